// Package report writes a run's canonical orders as CSV for manual review
// against the ledger.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
)

var header = []string{
	"source", "site", "order_id", "order_number", "date",
	"currency", "total", "paid", "customer", "items",
}

// WriteOrders writes one CSV row per order, amounts with two decimals and the
// date as YYYY-MM-DD
func WriteOrders(w io.Writer, orders []canonical.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: failed to write header: %w", err)
	}
	for _, order := range orders {
		if err := cw.Write(orderRow(order)); err != nil {
			return fmt.Errorf("report: failed to write order %s: %w", order.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flush failed: %w", err)
	}
	return nil
}

// ExportOrders writes the CSV to a file, creating or truncating it
func ExportOrders(path string, orders []canonical.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: failed to create %s: %w", path, err)
	}
	if err := WriteOrders(f, orders); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func orderRow(order canonical.Order) []string {
	customer := ""
	if order.Customer != nil {
		customer = order.Customer.Name
		if customer == "" {
			customer = order.Customer.Email
		}
	}

	paid := "yes"
	if !order.IsPaid() {
		paid = "no"
	}

	items := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fmt.Sprintf("%sx %s", item.Quantity, item.SKU))
	}

	return []string{
		order.Source,
		order.SitePrefix,
		order.ID,
		order.OrderNumber,
		order.Date.Format("2006-01-02"),
		order.Currency,
		order.Total.StringFixed(2),
		paid,
		customer,
		strings.Join(items, "; "),
	}
}
