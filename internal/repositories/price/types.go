package price

import (
	"time"
)

// GetPriceInput contains parameters for a price lookup
type GetPriceInput struct {
	// Commodity is the ore name, e.g. "quantainium"
	Commodity string
}

// GetPriceOutput contains the result of a price lookup
type GetPriceOutput struct {
	// UnitPrice is the price per unit in whole currency units
	UnitPrice int64

	// UpdatedAt is when the price was last refreshed
	UpdatedAt time.Time

	// Stale indicates the price is older than the configured max age
	Stale bool
}

// SetPriceInput contains parameters for storing a price
type SetPriceInput struct {
	// Commodity is the ore name
	Commodity string

	// UnitPrice is the price per unit in whole currency units
	UnitPrice int64
}
