package catalog

import (
	"github.com/shopspring/decimal"
)

// Test is a diagnostic test in the marketplace catalog.
type Test struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// HasPrice reports whether the test carries a base price.
func (t *Test) HasPrice() bool {
	return t.Price != nil
}

// Lab is a diagnostic lab registered on the platform.
type Lab struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zip_code"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// Offering links a lab to a test it performs, optionally overriding
// the test's description and price for that lab.
type Offering struct {
	LabID       int64            `json:"lab_id"`
	TestID      int64            `json:"test_id"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// PriceFor resolves the effective price of a test at a lab: the
// offering's override when set, the test's base price otherwise.
func (o *Offering) PriceFor(t *Test) *decimal.Decimal {
	if o.Price != nil {
		return o.Price
	}
	return t.Price
}
