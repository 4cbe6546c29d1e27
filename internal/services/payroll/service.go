package payroll

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/veldrin/orepay/internal/common/clock"
	"github.com/veldrin/orepay/internal/models"
	eventRepo "github.com/veldrin/orepay/internal/repositories/event"
	participationRepo "github.com/veldrin/orepay/internal/repositories/participation"
	priceRepo "github.com/veldrin/orepay/internal/repositories/price"
)

// service implements the Service interface
type service struct {
	eventRepo         eventRepo.Repository
	participationRepo participationRepo.Repository
	priceOracle       priceRepo.Oracle
	clock             clock.Clock

	// calculations holds one in-progress calculation per event
	mu           sync.Mutex
	calculations map[string]*calculation
}

// New creates a new payroll service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.EventRepo == nil {
		return nil, ErrNilEventRepo
	}

	if cfg.ParticipationRepo == nil {
		return nil, ErrNilParticipationRepo
	}

	if cfg.PriceOracle == nil {
		return nil, ErrNilPriceOracle
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	return &service{
		eventRepo:         cfg.EventRepo,
		participationRepo: cfg.ParticipationRepo,
		priceOracle:       cfg.PriceOracle,
		clock:             cfg.Clock,
		calculations:      make(map[string]*calculation),
	}, nil
}

// BeginCalculation opens a payroll calculation for a completed event
func (s *service) BeginCalculation(ctx context.Context, input *BeginCalculationInput) (*BeginCalculationOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	evt, err := s.eventRepo.GetEvent(ctx, &eventRepo.GetEventInput{
		EventID: input.EventID,
	})
	if err != nil {
		return nil, err
	}

	if evt.Status != models.EventStatusCompleted {
		return nil, ErrEventNotCompleted
	}

	contributions, err := s.participationRepo.ListContributions(ctx, &participationRepo.ListContributionsInput{
		EventID: input.EventID,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calculations[input.EventID]; ok {
		return nil, ErrCalculationInProgress
	}

	calc := newCalculation(evt, contributions.Contributions)
	s.calculations[input.EventID] = calc

	return &BeginCalculationOutput{
		EventID:          evt.ID,
		Stage:            calc.stage,
		ParticipantCount: len(contributions.Contributions),
	}, nil
}

// SetDonors records which members donate their base share
func (s *service) SetDonors(ctx context.Context, input *SetDonorsInput) (*SetDonorsOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	calc, err := s.calculationFor(input.EventID)
	if err != nil {
		return nil, err
	}

	if err := calc.setDonors(input.DonorIDs); err != nil {
		return nil, err
	}

	return &SetDonorsOutput{
		Stage: StageDonationSelection,
	}, nil
}

// SetCommodities replaces the commodity table for the calculation
func (s *service) SetCommodities(ctx context.Context, input *SetCommoditiesInput) (*SetCommoditiesOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	calc, err := s.calculationFor(input.EventID)
	if err != nil {
		return nil, err
	}

	if err := calc.setCommodities(input.Lines); err != nil {
		return nil, err
	}

	return &SetCommoditiesOutput{
		Stage: StagePriceSetup,
	}, nil
}

// SetPrices overrides unit prices on existing commodity lines
func (s *service) SetPrices(ctx context.Context, input *SetPricesInput) (*SetPricesOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	calc, err := s.calculationFor(input.EventID)
	if err != nil {
		return nil, err
	}

	if err := calc.setPrices(input.Prices); err != nil {
		return nil, err
	}

	return &SetPricesOutput{
		Stage: StagePriceSetup,
	}, nil
}

// Finalize resolves prices and computes a draft payout breakdown
func (s *service) Finalize(ctx context.Context, input *FinalizeInput) (*FinalizeOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	calc, err := s.calculationFor(input.EventID)
	if err != nil {
		return nil, err
	}

	result, err := calc.finalize(ctx, s.priceOracle, s.clock.Now())
	if err != nil {
		return nil, err
	}

	return &FinalizeOutput{
		Stage:  StageFinalCalculation,
		Result: result,
	}, nil
}

// Distribute settles the computed draft, records the event's total value and
// closes the calculation
func (s *service) Distribute(ctx context.Context, input *DistributeInput) (*DistributeOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	calc, err := s.calculationFor(input.EventID)
	if err != nil {
		return nil, err
	}

	calc.mu.Lock()
	defer calc.mu.Unlock()

	if err := calc.requireStage(StageFinalCalculation); err != nil {
		return nil, err
	}
	result := calc.result

	evt := calc.event
	evt.TotalValue = result.TotalValue
	if err := s.eventRepo.SaveEvent(ctx, &eventRepo.SaveEventInput{
		Event: evt,
	}); err != nil {
		return nil, err
	}

	calc.stage = StageDistributed

	s.mu.Lock()
	delete(s.calculations, input.EventID)
	s.mu.Unlock()

	log.Printf("distributed %d across %d members for event %s (unassigned %d)",
		result.TotalValue, len(result.Shares), evt.ID, result.UnassignedValue)

	return &DistributeOutput{
		Result: result,
	}, nil
}

// UpdateMarketPrice stores a commodity's market price in the oracle
func (s *service) UpdateMarketPrice(ctx context.Context, input *UpdateMarketPriceInput) (*UpdateMarketPriceOutput, error) {
	if input == nil || input.Commodity == "" {
		return nil, errors.New("input and commodity cannot be empty")
	}

	if err := s.priceOracle.SetPrice(ctx, &priceRepo.SetPriceInput{
		Commodity: input.Commodity,
		UnitPrice: input.UnitPrice,
	}); err != nil {
		return nil, err
	}

	return &UpdateMarketPriceOutput{
		Commodity: input.Commodity,
		UnitPrice: input.UnitPrice,
	}, nil
}

// CancelCalculation discards an in-progress calculation
func (s *service) CancelCalculation(ctx context.Context, input *CancelCalculationInput) (*CancelCalculationOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	s.mu.Lock()
	_, ok := s.calculations[input.EventID]
	if ok {
		delete(s.calculations, input.EventID)
	}
	s.mu.Unlock()

	return &CancelCalculationOutput{
		Cancelled: ok,
	}, nil
}

// GetCalculation returns the current state of an in-progress calculation
func (s *service) GetCalculation(ctx context.Context, input *GetCalculationInput) (*GetCalculationOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	calc, err := s.calculationFor(input.EventID)
	if err != nil {
		return nil, err
	}

	return calc.snapshot(), nil
}

// calculationFor returns the in-progress calculation for an event, if any
func (s *service) calculationFor(eventID string) (*calculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	calc, ok := s.calculations[eventID]
	if !ok {
		return nil, ErrCalculationNotFound
	}
	return calc, nil
}
