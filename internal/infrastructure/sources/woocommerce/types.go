package woocommerce

// wcRef is an embedded id/name pair (categories, tags)
type wcRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// wcProduct is the REST v3 product shape, money fields as decimal strings
type wcProduct struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Description   string  `json:"short_description"`
	Price         string  `json:"price"`
	RegularPrice  string  `json:"regular_price"`
	StockQuantity *int    `json:"stock_quantity"`
	Weight        string  `json:"weight"`
	Categories    []wcRef `json:"categories"`
	Tags          []wcRef `json:"tags"`
}

type wcBilling struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type wcLineItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
	Total    string `json:"total"`
	TotalTax string `json:"total_tax"`
}

// wcOrder is the REST v3 order shape. DatePaid is empty for unpaid orders;
// dates come without zone and are interpreted as the store's local time.
type wcOrder struct {
	ID                 int64        `json:"id"`
	Number             string       `json:"number"`
	Status             string       `json:"status"`
	Currency           string       `json:"currency"`
	DateCreated        string       `json:"date_created"`
	DatePaid           string       `json:"date_paid"`
	Total              string       `json:"total"`
	TotalTax           string       `json:"total_tax"`
	PaymentMethodTitle string       `json:"payment_method_title"`
	Billing            wcBilling    `json:"billing"`
	LineItems          []wcLineItem `json:"line_items"`
}
