package payroll

import (
	"time"

	"github.com/veldrin/orepay/internal/common/clock"
	eventRepo "github.com/veldrin/orepay/internal/repositories/event"
	participationRepo "github.com/veldrin/orepay/internal/repositories/participation"
	priceRepo "github.com/veldrin/orepay/internal/repositories/price"
)

// Stage represents where a payroll calculation is in its workflow. Stages only
// move forward, except that prices may be re-edited and a draft recomputed.
type Stage string

const (
	// StageEventSelected indicates a calculation has been opened for an event
	StageEventSelected Stage = "event_selected"

	// StageDonationSelection indicates the donor set has been chosen
	StageDonationSelection Stage = "donation_selection"

	// StagePriceSetup indicates the commodity table is being edited
	StagePriceSetup Stage = "price_setup"

	// StageFinalCalculation indicates a draft result has been computed
	StageFinalCalculation Stage = "final_calculation"

	// StageDistributed indicates payouts are settled; the calculation is terminal
	StageDistributed Stage = "distributed"
)

// CommodityLine is one row of the commodity table
type CommodityLine struct {
	// Commodity is the ore name
	Commodity string

	// Quantity is the collected amount in units
	Quantity int64

	// UnitPrice is the price per unit in whole currency units
	UnitPrice int64

	// PriceOverridden indicates the price was supplied by the caller rather
	// than resolved from the oracle
	PriceOverridden bool

	// PriceStale indicates the oracle reported the resolved price as stale
	PriceStale bool
}

// MemberShare is one member's payout breakdown
type MemberShare struct {
	// MemberID is the Discord user ID of the participant
	MemberID string

	// MemberName is the display name of the participant
	MemberName string

	// Seconds is the member's total participation in seconds
	Seconds int64

	// IsDonor indicates the member donated their base share
	IsDonor bool

	// BaseShare is the time-weighted payout before donation redistribution
	BaseShare int64

	// DonationBonus is the extra payout received from redistributed donor shares
	DonationBonus int64

	// FinalPayout is the amount actually owed to the member
	FinalPayout int64
}

// Result is the outcome of one payroll computation pass
type Result struct {
	// EventID is the event the pass was computed for
	EventID string

	// TotalValue is the pool distributed, in whole currency units
	TotalValue int64

	// TotalSeconds is the summed participation of all eligible members
	TotalSeconds int64

	// Shares holds the per-member breakdown, ordered by member ID
	Shares []*MemberShare

	// UnassignedValue is donated value with no one left to receive it
	UnassignedValue int64

	// PricedExcluded lists commodities left out because no price was available
	PricedExcluded []string

	// ComputedAt is when the pass ran
	ComputedAt time.Time
}

// Config holds configuration for the payroll service
type Config struct {
	// Repository dependencies
	EventRepo         eventRepo.Repository
	ParticipationRepo participationRepo.Repository
	PriceOracle       priceRepo.Oracle

	// Service dependencies
	Clock clock.Clock
}

// BeginCalculationInput contains parameters for opening a calculation
type BeginCalculationInput struct {
	// EventID is the completed event to compute payroll for
	EventID string
}

// BeginCalculationOutput contains the result of opening a calculation
type BeginCalculationOutput struct {
	// EventID is the event the calculation is bound to
	EventID string

	// Stage is the calculation's current stage
	Stage Stage

	// ParticipantCount is the number of members with recorded contributions
	ParticipantCount int
}

// SetDonorsInput contains parameters for choosing the donor set
type SetDonorsInput struct {
	// EventID identifies the in-progress calculation
	EventID string

	// DonorIDs are members donating their base share; may be empty
	DonorIDs []string
}

// SetDonorsOutput contains the result of choosing the donor set
type SetDonorsOutput struct {
	// Stage is the calculation's stage after the operation
	Stage Stage
}

// SetCommoditiesInput contains parameters for replacing the commodity table
type SetCommoditiesInput struct {
	// EventID identifies the in-progress calculation
	EventID string

	// Lines is the full commodity table; a line with UnitPrice > 0 counts as
	// a caller override, otherwise the oracle resolves the price at Finalize
	Lines []*CommodityLine
}

// SetCommoditiesOutput contains the result of replacing the commodity table
type SetCommoditiesOutput struct {
	// Stage is the calculation's stage after the operation
	Stage Stage
}

// SetPricesInput contains parameters for overriding unit prices
type SetPricesInput struct {
	// EventID identifies the in-progress calculation
	EventID string

	// Prices maps commodity to an overriding unit price
	Prices map[string]int64
}

// SetPricesOutput contains the result of overriding unit prices
type SetPricesOutput struct {
	// Stage is the calculation's stage after the operation
	Stage Stage
}

// FinalizeInput contains parameters for computing a draft result
type FinalizeInput struct {
	// EventID identifies the in-progress calculation
	EventID string
}

// FinalizeOutput contains the computed draft
type FinalizeOutput struct {
	// Stage is the calculation's stage after the operation
	Stage Stage

	// Result is the full payout breakdown
	Result *Result
}

// DistributeInput contains parameters for settling a computed draft
type DistributeInput struct {
	// EventID identifies the in-progress calculation
	EventID string
}

// DistributeOutput contains the settled result
type DistributeOutput struct {
	// Result is the distributed payout breakdown
	Result *Result
}

// CancelCalculationInput contains parameters for discarding a calculation
type CancelCalculationInput struct {
	// EventID identifies the in-progress calculation
	EventID string
}

// CancelCalculationOutput contains the result of discarding a calculation
type CancelCalculationOutput struct {
	// Cancelled indicates a calculation was discarded
	Cancelled bool
}

// UpdateMarketPriceInput contains parameters for refreshing a market price
type UpdateMarketPriceInput struct {
	// Commodity is the ore name
	Commodity string

	// UnitPrice is the new market price per unit in whole currency units
	UnitPrice int64
}

// UpdateMarketPriceOutput contains the result of refreshing a market price
type UpdateMarketPriceOutput struct {
	// Commodity is the ore name the price was stored under
	Commodity string

	// UnitPrice is the stored unit price
	UnitPrice int64
}

// GetCalculationInput contains parameters for inspecting a calculation
type GetCalculationInput struct {
	// EventID identifies the in-progress calculation
	EventID string
}

// GetCalculationOutput describes the calculation's current state
type GetCalculationOutput struct {
	// EventID is the event the calculation is bound to
	EventID string

	// Stage is the calculation's current stage
	Stage Stage

	// DonorIDs are the currently selected donors, ordered
	DonorIDs []string

	// Lines is the current commodity table, ordered by commodity
	Lines []*CommodityLine

	// Result is the latest draft, nil before the first Finalize
	Result *Result
}
