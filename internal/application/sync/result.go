package sync

// ItemFailure records one rejected item so the run report can show the
// ledger's raw error next to the business key.
type ItemFailure struct {
	Key     string // sku or order id
	Message string
}

// ProductResult aggregates one product-sync batch. Counts are strictly
// additive; a single failed item never aborts the batch.
type ProductResult struct {
	Created int
	Updated int
	Errors  int
	Failed  []ItemFailure
}

// OrderResult aggregates one order-sync batch
type OrderResult struct {
	Created int
	Errors  int
	Failed  []ItemFailure
}
