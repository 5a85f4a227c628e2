package holded

// DocType selects the kind of sales document created on the ledger. The
// enumeration is closed; Holded rejects unknown document types.
type DocType string

const (
	// DocTypeInvoice is a standard sales invoice
	DocTypeInvoice DocType = "invoice"
	// DocTypeSalesReceipt is a simplified receipt without full contact data
	DocTypeSalesReceipt DocType = "salesreceipt"
	// DocTypeCreditNote is a corrective document
	DocTypeCreditNote DocType = "creditnote"
)

// IsValid returns true if the document type is one the ledger accepts
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeInvoice, DocTypeSalesReceipt, DocTypeCreditNote:
		return true
	default:
		return false
	}
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}
