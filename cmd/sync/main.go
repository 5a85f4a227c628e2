package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	syncapp "github.com/olozano-p/holded-sync-woocommerce/internal/application/sync"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/config"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/logger"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/report"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/sources/bookings"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/sources/cardpay"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/sources/woocommerce"
)

func main() {
	var (
		syncProducts = flag.Bool("products", false, "sync the product catalog")
		syncOrders   = flag.Bool("orders", false, "sync orders as ledger documents")
		dateFrom     = flag.String("from", "", "first order day, YYYY-MM-DD (defaults to yesterday)")
		dateTo       = flag.String("to", "", "last order day, YYYY-MM-DD (defaults to yesterday)")
		exportPath   = flag.String("export", "", "write the collected orders to a CSV file instead of syncing")
	)
	flag.Parse()

	// A local .env is convenient in development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting sync run",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Bool("products", *syncProducts),
		zap.Bool("orders", *syncOrders),
	)

	sources, err := buildSources(cfg, log)
	if err != nil {
		log.Fatal("Failed to build sources", zap.Error(err))
	}

	from, to := orderRange(*dateFrom, *dateTo)
	ctx := context.Background()

	if *exportPath != "" {
		orders := syncapp.CollectOrders(ctx, sources, from, to, log)
		if err := report.ExportOrders(*exportPath, orders); err != nil {
			log.Fatal("Export failed", zap.Error(err))
		}
		log.Info("Orders exported",
			zap.String("path", *exportPath),
			zap.Int("orders", len(orders)),
		)
		return
	}

	if !*syncProducts && !*syncOrders {
		log.Fatal("Nothing to do: pass -products, -orders or -export")
	}

	runner, err := buildRunner(cfg, sources, log)
	if err != nil {
		log.Fatal("Failed to build sync runner", zap.Error(err))
	}

	failed := false
	if *syncProducts {
		for name, result := range runner.RunProducts(ctx) {
			log.Info("Product sync result",
				zap.String("destination", name),
				zap.Int("created", result.Created),
				zap.Int("updated", result.Updated),
				zap.Int("errors", result.Errors),
			)
			if result.Errors > 0 {
				failed = true
			}
		}
	}
	if *syncOrders {
		for name, result := range runner.RunOrders(ctx, from, to) {
			log.Info("Order sync result",
				zap.String("destination", name),
				zap.Int("created", result.Created),
				zap.Int("errors", result.Errors),
			)
			if result.Errors > 0 {
				failed = true
			}
		}
	}

	if failed {
		log.Warn("Sync run finished with errors")
		_ = logger.Sync(log)
		os.Exit(1)
	}
	log.Info("Sync run finished")
}

// orderRange fills missing date flags; both default to yesterday, the usual
// nightly window
func orderRange(from, to string) (string, string) {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if from == "" {
		from = yesterday
	}
	if to == "" {
		to = yesterday
	}
	return from, to
}

func buildSources(cfg *config.Config, log *zap.Logger) ([]syncapp.Source, error) {
	var sources []syncapp.Source

	for _, site := range cfg.Sites {
		source, err := woocommerce.New(woocommerce.Config{
			Prefix:           site.Prefix,
			BaseURL:          site.BaseURL,
			ConsumerKey:      site.ConsumerKey,
			ConsumerSecret:   site.ConsumerSecret,
			VATRate:          decimal.NewFromFloat(site.VATRate),
			PricesIncludeTax: site.PricesIncludeTax,
			PageSize:         cfg.Holded.PageSize,
		}, log)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if cfg.CardPay.Enabled {
		source, err := cardpay.New(cardpay.Config{
			BaseURL:    cfg.CardPay.BaseURL,
			APIKey:     cfg.CardPay.APIKey,
			SitePrefix: cfg.CardPay.SitePrefix,
			DefaultSKU: cfg.CardPay.DefaultSKU,
		}, log)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if cfg.Bookings.Enabled {
		source, err := bookings.New(bookings.Config{
			BaseURL:      cfg.Bookings.BaseURL,
			APIKey:       cfg.Bookings.APIKey,
			SitePrefix:   cfg.Bookings.SitePrefix,
			SalesChannel: cfg.Bookings.SalesChannel,
		}, log)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return sources, nil
}

func buildRunner(cfg *config.Config, sources []syncapp.Source, log *zap.Logger) (*syncapp.Runner, error) {
	siteVAT := make(map[string]decimal.Decimal, len(cfg.Sites))
	for _, site := range cfg.Sites {
		siteVAT[site.Prefix] = decimal.NewFromFloat(site.VATRate)
	}

	primary, err := buildSession(cfg, "primary", cfg.Holded.PrimaryAPIKey, siteVAT, log)
	if err != nil {
		return nil, err
	}

	var secondary *syncapp.Session
	if cfg.Holded.SecondaryAPIKey != "" {
		secondary, err = buildSession(cfg, "secondary", cfg.Holded.SecondaryAPIKey, siteVAT, log)
		if err != nil {
			return nil, err
		}
	}

	router := syncapp.NewRouter(cfg.Routing.SecondarySKUs, cfg.Routing.ExcludedSKUs, log)
	return syncapp.NewRunner(sources, router, primary, secondary, log), nil
}

func buildSession(cfg *config.Config, name, apiKey string, siteVAT map[string]decimal.Decimal, log *zap.Logger) (*syncapp.Session, error) {
	client, err := holded.NewClient(&holded.Config{
		APIKey:         apiKey,
		APIBaseURL:     cfg.Holded.BaseURL,
		TimeoutSeconds: int(cfg.Holded.Timeout / time.Second),
	})
	if err != nil {
		return nil, err
	}

	return syncapp.NewSession(client, syncapp.Options{
		Name:          name,
		DocType:       holded.DocType(cfg.Holded.DocType),
		PageSize:      cfg.Holded.PageSize,
		ProductDelay:  cfg.Sync.ProductDelay,
		DocumentDelay: cfg.Sync.DocumentDelay,
		SiteVAT:       siteVAT,
		DefaultVAT:    decimal.NewFromFloat(cfg.Sync.DefaultVATRate),
	}, log)
}
