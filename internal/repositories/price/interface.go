package price

//go:generate mockgen -package=mocks -destination=mocks/mock_oracle.go github.com/veldrin/orepay/internal/repositories/price Oracle

import (
	"context"
)

// Oracle defines the interface for per-commodity market prices
type Oracle interface {
	// GetPrice retrieves the unit price for a commodity and whether it is stale
	GetPrice(ctx context.Context, input *GetPriceInput) (*GetPriceOutput, error)

	// SetPrice stores the unit price for a commodity, refreshing its timestamp
	SetPrice(ctx context.Context, input *SetPriceInput) error
}
