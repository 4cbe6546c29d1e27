package payroll

import (
	"sort"
	"sync"

	"github.com/veldrin/orepay/internal/models"
)

// calculation is the mutable state of one in-progress payroll pass. A single
// mutex serializes every stage transition, so at most one computation runs at
// a time for an event.
type calculation struct {
	mu sync.Mutex

	event         *models.MiningEvent
	contributions []*models.Contribution

	stage  Stage
	donors map[string]struct{}
	lines  map[string]*CommodityLine
	result *Result
}

func newCalculation(event *models.MiningEvent, contributions []*models.Contribution) *calculation {
	return &calculation{
		event:         event,
		contributions: contributions,
		stage:         StageEventSelected,
		donors:        make(map[string]struct{}),
		lines:         make(map[string]*CommodityLine),
	}
}

// requireStage checks that the calculation is in one of the allowed stages.
// Callers must hold c.mu.
func (c *calculation) requireStage(allowed ...Stage) error {
	for _, s := range allowed {
		if c.stage == s {
			return nil
		}
	}
	return ErrInvalidStage
}

// setDonors validates and records the donor set. Every donor must have a
// recorded contribution for the event.
func (c *calculation) setDonors(donorIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStage(StageEventSelected, StageDonationSelection); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(c.contributions))
	for _, contrib := range c.contributions {
		known[contrib.MemberID] = struct{}{}
	}

	donors := make(map[string]struct{}, len(donorIDs))
	for _, id := range donorIDs {
		if _, ok := known[id]; !ok {
			return ErrInvalidDonorState
		}
		donors[id] = struct{}{}
	}

	c.donors = donors
	c.stage = StageDonationSelection
	return nil
}

// setCommodities replaces the commodity table. Skipping donor selection is
// allowed and means nobody donates. Lines with a positive unit price are
// treated as caller overrides. Re-entering from FinalCalculation invalidates
// the previous draft.
func (c *calculation) setCommodities(lines []*CommodityLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStage(StageEventSelected, StageDonationSelection, StagePriceSetup, StageFinalCalculation); err != nil {
		return err
	}

	table := make(map[string]*CommodityLine, len(lines))
	for _, line := range lines {
		table[line.Commodity] = &CommodityLine{
			Commodity:       line.Commodity,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			PriceOverridden: line.UnitPrice > 0,
		}
	}

	c.lines = table
	c.stage = StagePriceSetup
	c.result = nil
	return nil
}

// setPrices overrides unit prices on existing lines. Prices for commodities
// not in the table are ignored.
func (c *calculation) setPrices(prices map[string]int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStage(StageDonationSelection, StagePriceSetup, StageFinalCalculation); err != nil {
		return err
	}

	for commodity, unitPrice := range prices {
		line, ok := c.lines[commodity]
		if !ok {
			continue
		}
		line.UnitPrice = unitPrice
		line.PriceOverridden = true
		line.PriceStale = false
	}

	c.stage = StagePriceSetup
	c.result = nil
	return nil
}

// sortedLines returns the commodity table ordered by commodity name.
// Callers must hold c.mu.
func (c *calculation) sortedLines() []*CommodityLine {
	out := make([]*CommodityLine, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Commodity < out[j].Commodity
	})
	return out
}

// sortedDonors returns the donor set ordered by member ID.
// Callers must hold c.mu.
func (c *calculation) sortedDonors() []string {
	out := make([]string, 0, len(c.donors))
	for id := range c.donors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// snapshot returns a read-only view of the calculation state. Commodity
// lines are copied so callers cannot reach the live table behind the
// stage checks.
func (c *calculation) snapshot() *GetCalculationOutput {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]*CommodityLine, 0, len(c.lines))
	for _, line := range c.sortedLines() {
		copied := *line
		lines = append(lines, &copied)
	}

	return &GetCalculationOutput{
		EventID:  c.event.ID,
		Stage:    c.stage,
		DonorIDs: c.sortedDonors(),
		Lines:    lines,
		Result:   c.result,
	}
}
