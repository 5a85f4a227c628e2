package holded

// Product is a product record as returned by the ledger. Tax carries the
// account's tax code for the product (e.g. "s_iva_21"); it is authoritative
// over any source-declared rate.
type Product struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	SKU   string   `json:"sku"`
	Desc  string   `json:"desc"`
	Price float64  `json:"price"`
	Tax   string   `json:"tax"`
	Kind  string   `json:"kind"`
	Tags  []string `json:"tags"`
}

// Contact is a contact record as returned by the ledger
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Code      string `json:"code"`
	VATNumber string `json:"vatnumber"`
}

// NamedRef is a minimal id/name pair used by sales channels, warehouses and
// payment methods
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductPayload is the create/update body for a product. Tax is a pointer so
// updates can omit it entirely: an existing ledger tax configuration must not
// be clobbered by a later sync.
type ProductPayload struct {
	Name          string   `json:"name"`
	SKU           string   `json:"sku"`
	Desc          string   `json:"desc,omitempty"`
	Price         float64  `json:"price"`
	PurchasePrice float64  `json:"purchasePrice,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Kind          string   `json:"kind"`
	Tax           *float64 `json:"tax,omitempty"`
}

// ContactPayload is the create body for a contact
type ContactPayload struct {
	Name        string       `json:"name"`
	Code        string       `json:"code,omitempty"`
	VATNumber   string       `json:"vatnumber,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Mobile      string       `json:"mobile,omitempty"`
	Type        string       `json:"type"`
	BillAddress *BillAddress `json:"billAddress,omitempty"`
}

// BillAddress is the billing address block of a contact
type BillAddress struct {
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	Province    string `json:"province,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// DocumentItem is one line of a document. Subtotal is always tax-exclusive;
// Tax is the percentage the ledger applies on top of it.
type DocumentItem struct {
	Name     string  `json:"name"`
	Desc     string  `json:"desc,omitempty"`
	SKU      string  `json:"sku,omitempty"`
	Units    float64 `json:"units"`
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount,omitempty"`
	Tax      float64 `json:"tax"`
}

// DocumentPayload is the create body for a sales document. Contact linkage is
// one of three shapes, in priority order: ContactID referencing a resolved
// contact, ContactCode carrying a raw VAT number, or the inline contact
// fields. Dates are epoch seconds.
type DocumentPayload struct {
	ContactID      string         `json:"contactId,omitempty"`
	ContactCode    string         `json:"contactCode,omitempty"`
	ContactName    string         `json:"contactName,omitempty"`
	ContactEmail   string         `json:"contactEmail,omitempty"`
	Desc           string         `json:"desc,omitempty"`
	Date           int64          `json:"date"`
	DueDate        int64          `json:"dueDate,omitempty"`
	Currency       string         `json:"currency,omitempty"`
	Items          []DocumentItem `json:"items"`
	Tags           []string       `json:"tags,omitempty"`
	SalesChannelID string         `json:"salesChannelId,omitempty"`
	WarehouseID    string         `json:"warehouseId,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// PaymentPayload marks a document as paid
type PaymentPayload struct {
	Date            int64   `json:"date"`
	Amount          float64 `json:"amount"`
	Desc            string  `json:"desc,omitempty"`
	PaymentMethodID string  `json:"paymentMethodId,omitempty"`
}

// apiResponse is the mutation envelope returned by the ledger
type apiResponse struct {
	Status int    `json:"status"`
	Info   string `json:"info"`
	ID     string `json:"id"`
}

// IsSuccess returns true when the ledger accepted the mutation
func (r *apiResponse) IsSuccess() bool {
	return r.Status == 1
}
