package payroll

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/veldrin/orepay/internal/models"
	priceRepo "github.com/veldrin/orepay/internal/repositories/price"
)

// allocateByWeight splits total into integer shares proportional to weights,
// using largest-remainder rounding so the shares always sum to total. Ties on
// remainder go to the larger weight, then to the lower index. Weights must be
// non-negative and input order determines tie-break order.
func allocateByWeight(total int64, weights []int64) []int64 {
	shares := make([]int64, len(weights))
	if total <= 0 || len(weights) == 0 {
		return shares
	}

	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum <= 0 {
		return shares
	}

	type leftover struct {
		index     int
		remainder int64
	}

	var assigned int64
	remainders := make([]leftover, 0, len(weights))
	for i, w := range weights {
		shares[i] = total * w / weightSum
		assigned += shares[i]
		remainders = append(remainders, leftover{
			index:     i,
			remainder: total * w % weightSum,
		})
	}

	sort.Slice(remainders, func(i, j int) bool {
		a, b := remainders[i], remainders[j]
		if a.remainder != b.remainder {
			return a.remainder > b.remainder
		}
		if weights[a.index] != weights[b.index] {
			return weights[a.index] > weights[b.index]
		}
		return a.index < b.index
	})

	for i := int64(0); i < total-assigned; i++ {
		shares[remainders[i].index]++
	}

	return shares
}

// finalize resolves outstanding prices through the oracle and computes the
// full payout breakdown. The calculation lock is held for the whole pass, so
// only one computation can run per event at a time. Recomputing from
// FinalCalculation yields the identical result.
func (c *calculation) finalize(ctx context.Context, oracle priceRepo.Oracle, now time.Time) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireStage(StagePriceSetup, StageFinalCalculation); err != nil {
		return nil, err
	}

	var totalValue int64
	var excluded []string
	for _, line := range c.sortedLines() {
		if !line.PriceOverridden {
			out, err := oracle.GetPrice(ctx, &priceRepo.GetPriceInput{
				Commodity: line.Commodity,
			})
			if err != nil {
				// No price and no override: the commodity drops out of the
				// pool instead of failing the whole pass. An unreachable
				// oracle is treated the same as a missing price; the caller
				// can supply an override and recompute.
				if !errors.Is(err, priceRepo.ErrPriceNotFound) {
					log.Printf("payroll: price lookup failed for %s, excluding: %v", line.Commodity, err)
				}
				excluded = append(excluded, line.Commodity)
				continue
			}
			line.UnitPrice = out.UnitPrice
			line.PriceStale = out.Stale
		}
		totalValue += line.Quantity * line.UnitPrice
	}

	eligible := make([]*models.Contribution, 0, len(c.contributions))
	for _, contrib := range c.contributions {
		if contrib.TotalSeconds > 0 {
			eligible = append(eligible, contrib)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoParticipation
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].MemberID < eligible[j].MemberID
	})

	// Donors are validated against the full participant set when selected,
	// but a donor must also have counted time to have a share to give.
	eligibleSet := make(map[string]struct{}, len(eligible))
	for _, contrib := range eligible {
		eligibleSet[contrib.MemberID] = struct{}{}
	}
	for id := range c.donors {
		if _, ok := eligibleSet[id]; !ok {
			return nil, ErrInvalidDonorState
		}
	}

	var totalSeconds int64
	weights := make([]int64, len(eligible))
	for i, contrib := range eligible {
		weights[i] = contrib.TotalSeconds
		totalSeconds += contrib.TotalSeconds
	}

	base := allocateByWeight(totalValue, weights)

	shares := make([]*MemberShare, len(eligible))
	var donated int64
	recipients := make([]int, 0, len(eligible))
	for i, contrib := range eligible {
		_, isDonor := c.donors[contrib.MemberID]
		shares[i] = &MemberShare{
			MemberID:   contrib.MemberID,
			MemberName: contrib.MemberName,
			Seconds:    contrib.TotalSeconds,
			IsDonor:    isDonor,
			BaseShare:  base[i],
		}
		if isDonor {
			donated += base[i]
		} else {
			shares[i].FinalPayout = base[i]
			recipients = append(recipients, i)
		}
	}

	var unassigned int64
	if donated > 0 {
		if len(recipients) == 0 {
			// Everyone donated; the pool has nowhere to go
			unassigned = donated
		} else {
			recipientWeights := make([]int64, len(recipients))
			for j, i := range recipients {
				recipientWeights[j] = weights[i]
			}
			bonuses := allocateByWeight(donated, recipientWeights)
			for j, i := range recipients {
				shares[i].DonationBonus = bonuses[j]
				shares[i].FinalPayout = shares[i].BaseShare + bonuses[j]
			}
		}
	}

	c.result = &Result{
		EventID:         c.event.ID,
		TotalValue:      totalValue,
		TotalSeconds:    totalSeconds,
		Shares:          shares,
		UnassignedValue: unassigned,
		PricedExcluded:  excluded,
		ComputedAt:      now,
	}
	c.stage = StageFinalCalculation

	return c.result, nil
}
