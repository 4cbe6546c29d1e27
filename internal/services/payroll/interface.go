package payroll

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/veldrin/orepay/internal/services/payroll Service

import (
	"context"
)

// Service defines the interface for the payroll workflow
type Service interface {
	// BeginCalculation opens a payroll calculation for a completed event
	BeginCalculation(ctx context.Context, input *BeginCalculationInput) (*BeginCalculationOutput, error)

	// SetDonors records which members donate their base share
	SetDonors(ctx context.Context, input *SetDonorsInput) (*SetDonorsOutput, error)

	// SetCommodities replaces the commodity table for the calculation
	SetCommodities(ctx context.Context, input *SetCommoditiesInput) (*SetCommoditiesOutput, error)

	// SetPrices overrides unit prices on existing commodity lines
	SetPrices(ctx context.Context, input *SetPricesInput) (*SetPricesOutput, error)

	// Finalize resolves prices and computes a draft payout breakdown
	Finalize(ctx context.Context, input *FinalizeInput) (*FinalizeOutput, error)

	// Distribute settles the computed draft and closes the calculation
	Distribute(ctx context.Context, input *DistributeInput) (*DistributeOutput, error)

	// UpdateMarketPrice stores a commodity's market price in the oracle, used
	// by future calculations that do not override it
	UpdateMarketPrice(ctx context.Context, input *UpdateMarketPriceInput) (*UpdateMarketPriceOutput, error)

	// CancelCalculation discards an in-progress calculation
	CancelCalculation(ctx context.Context, input *CancelCalculationInput) (*CancelCalculationOutput, error)

	// GetCalculation returns the current state of an in-progress calculation
	GetCalculation(ctx context.Context, input *GetCalculationInput) (*GetCalculationOutput, error)
}
