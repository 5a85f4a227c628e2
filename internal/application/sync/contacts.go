package sync

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

// findOrCreateContact resolves a customer to a ledger contact id. Resolution
// is deterministic: cache first, then ledger searches by email, national id
// and VAT number in that order, short-circuiting on the first match, then
// create. A customer without name or email resolves to "" with no error: the
// invoice is simply anonymous.
func (s *Session) findOrCreateContact(ctx context.Context, customer *canonical.Customer, log *zap.Logger) (string, error) {
	if !customer.HasIdentity() {
		return "", nil
	}

	key := customer.CacheKey()
	if id, ok := s.cache.contacts[key]; ok {
		return id, nil
	}

	for _, query := range contactSearches(customer) {
		contacts, err := s.client.SearchContacts(ctx, query)
		if err != nil {
			return "", err
		}
		if len(contacts) > 0 {
			s.cache.contacts[key] = contacts[0].ID
			return contacts[0].ID, nil
		}
	}

	id, err := s.client.CreateContact(ctx, contactPayload(customer))
	if err != nil {
		return "", err
	}
	log.Debug("contact created", zap.String("key", key), zap.String("contact_id", id))
	s.cache.contacts[key] = id
	return id, nil
}

// contactSearches builds the ledger lookups in idempotency-key priority
// order: email, then national id, then VAT number.
func contactSearches(customer *canonical.Customer) []url.Values {
	var searches []url.Values
	if customer.Email != "" {
		searches = append(searches, url.Values{"email": {customer.Email}})
	}
	if customer.DNI != "" {
		searches = append(searches, url.Values{"code": {customer.DNI}})
	}
	if customer.VATNumber != "" {
		searches = append(searches, url.Values{"vatnumber": {customer.VATNumber}})
	}
	return searches
}

// contactPayload maps a canonical customer onto the ledger's contact shape
func contactPayload(customer *canonical.Customer) holded.ContactPayload {
	name := customer.Name
	if name == "" {
		name = customer.Email
	}
	if customer.Company != "" {
		name = customer.Company
	}

	payload := holded.ContactPayload{
		Name:      name,
		Code:      customer.DNI,
		VATNumber: customer.VATNumber,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Type:      "client",
	}

	if customer.Address != "" || customer.City != "" || customer.Country != "" {
		payload.BillAddress = &holded.BillAddress{
			Address:     customer.Address,
			City:        customer.City,
			PostalCode:  customer.PostalCode,
			Province:    customer.Province,
			Country:     customer.CountryName,
			CountryCode: customer.Country,
		}
	}
	return payload
}
