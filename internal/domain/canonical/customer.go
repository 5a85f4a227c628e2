package canonical

// Customer is the canonical buyer identity attached to an order. Email, DNI
// and VATNumber are the idempotency keys used for contact lookup on the
// destination, in that priority order. A customer with neither name nor email
// resolves to an anonymous invoice, which is a valid outcome.
type Customer struct {
	Name        string
	Email       string `validate:"omitempty,email"`
	Phone       string
	Company     string
	DNI         string
	VATNumber   string
	Address     string
	City        string
	PostalCode  string
	Province    string
	Country     string
	CountryName string
}

// HasIdentity reports whether the customer can be resolved to a ledger contact
func (c *Customer) HasIdentity() bool {
	if c == nil {
		return false
	}
	return c.Name != "" || c.Email != ""
}

// CacheKey returns the reference-cache key for this customer: email when
// present, otherwise name. Empty when the customer has no identity.
func (c *Customer) CacheKey() string {
	if c == nil {
		return ""
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Name
}
