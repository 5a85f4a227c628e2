package sync

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/tax"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

// Session errors
var (
	ErrNilClient          = errors.New("sync: ledger client is required")
	ErrInvalidDocType     = errors.New("sync: invalid document type")
	ErrMissingSessionName = errors.New("sync: session name is required")
)

// Options configures one destination session
type Options struct {
	// Name identifies the destination in logs ("primary"/"secondary")
	Name string
	// DocType is the sales document kind created for orders
	DocType holded.DocType
	// PageSize is the page size used for reference-cache reads
	PageSize int
	// ProductDelay is the pause after each product write
	ProductDelay time.Duration
	// DocumentDelay is the pause after each document write
	DocumentDelay time.Duration
	// SiteVAT maps a site prefix to its default VAT percentage
	SiteVAT map[string]decimal.Decimal
	// DefaultVAT is the fallback percentage when no site entry matches
	DefaultVAT decimal.Decimal
}

// Session owns all mutable state of one destination account for the duration
// of a sync call: the ledger client, the reference cache and the batch
// pacing. Writes against one destination are strictly sequential; two
// sessions with disjoint credentials may run concurrently with each other.
type Session struct {
	opts   Options
	client LedgerClient
	cache  *referenceCache
	log    *zap.Logger
}

// NewSession creates a destination session
func NewSession(client LedgerClient, opts Options, log *zap.Logger) (*Session, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if opts.Name == "" {
		return nil, ErrMissingSessionName
	}
	if opts.DocType == "" {
		opts.DocType = holded.DocTypeInvoice
	}
	if !opts.DocType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocType, opts.DocType)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.ProductDelay <= 0 {
		opts.ProductDelay = 300 * time.Millisecond
	}
	if opts.DocumentDelay <= 0 {
		opts.DocumentDelay = time.Second
	}
	if opts.DefaultVAT.IsZero() {
		opts.DefaultVAT = tax.DefaultRate
	}
	return &Session{
		opts:   opts,
		client: client,
		cache:  newReferenceCache(),
		log:    log.With(zap.String("destination", opts.Name)),
	}, nil
}

// Name returns the destination name
func (s *Session) Name() string {
	return s.opts.Name
}

// siteDefault returns the configured VAT fallback for a site prefix
func (s *Session) siteDefault(prefix string) decimal.Decimal {
	if rate, ok := s.opts.SiteVAT[prefix]; ok {
		return rate
	}
	return s.opts.DefaultVAT
}
