package tracking

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/veldrin/orepay/internal/common/uuid"
	"github.com/veldrin/orepay/internal/models"
	participationRepo "github.com/veldrin/orepay/internal/repositories/participation"
)

// memberState is the per-member state machine. A member is either idle
// (activeChannel == "") or active in exactly one channel.
type memberState struct {
	mu sync.Mutex

	activeChannel string
	joinedAt      time.Time

	contrib *models.Contribution

	// closeSeq counts session closes for this member; reachedSeq records, per
	// channel, the close at which its accumulated duration last grew. Primary
	// channel ties are broken in favor of the channel that reached the shared
	// maximum first.
	closeSeq   int64
	reachedSeq map[string]int64
}

// aggregator owns all open sessions and member aggregates for one active
// event. It is constructed on event start and discarded on stop or cancel.
type aggregator struct {
	event      *models.MiningEvent
	tracked    map[string]struct{}
	minSegment time.Duration

	store       participationRepo.Repository
	uuidGen     uuid.UUID
	saveRetries uint64

	// drain is held shared while applying presence events and exclusively
	// while stopping, so Stop acts as a barrier for in-flight updates.
	drain   sync.RWMutex
	stopped bool

	membersMu sync.Mutex
	members   map[string]*memberState

	lostSegments int64
}

func newAggregator(evt *models.MiningEvent, minSegment time.Duration, store participationRepo.Repository, uuidGen uuid.UUID, saveRetries uint64) *aggregator {
	tracked := make(map[string]struct{}, len(evt.TrackedChannelIDs))
	for _, id := range evt.TrackedChannelIDs {
		tracked[id] = struct{}{}
	}

	return &aggregator{
		event:       evt,
		tracked:     tracked,
		minSegment:  minSegment,
		store:       store,
		uuidGen:     uuidGen,
		saveRetries: saveRetries,
		members:     make(map[string]*memberState),
	}
}

// memberState returns the state machine for a member, creating it lazily
func (a *aggregator) memberState(evt *PresenceEvent) *memberState {
	a.membersMu.Lock()
	defer a.membersMu.Unlock()

	ms, ok := a.members[evt.MemberID]
	if !ok {
		ms = &memberState{
			contrib: &models.Contribution{
				EventID:        a.event.ID,
				MemberID:       evt.MemberID,
				MemberName:     evt.MemberName,
				ChannelSeconds: make(map[string]int64),
				IsOrgMember:    evt.IsOrgMember,
			},
			reachedSeq: make(map[string]int64),
		}
		a.members[evt.MemberID] = ms
	}
	return ms
}

// Apply runs one canonical presence event through the member's state machine.
// Events for the same member must arrive in order; events for different
// members may be applied concurrently.
func (a *aggregator) Apply(ctx context.Context, evt *PresenceEvent) error {
	a.drain.RLock()
	defer a.drain.RUnlock()

	if a.stopped {
		return ErrEventStopped
	}

	ms := a.memberState(evt)
	ms.mu.Lock()
	defer ms.mu.Unlock()

	switch evt.Kind {
	case EventKindJoin:
		if ms.activeChannel != "" {
			if ms.activeChannel == evt.ChannelID {
				log.Printf("tracking: duplicate join for member %s in channel %s, ignoring", evt.MemberID, evt.ChannelID)
				return nil
			}
			// Missed leave: recover by closing the current session at the
			// join timestamp before opening the new one.
			log.Printf("tracking: member %s joined %s while active in %s, closing stale session", evt.MemberID, evt.ChannelID, ms.activeChannel)
			a.closeSession(ctx, ms, evt.Timestamp)
		}
		ms.activeChannel = evt.ChannelID
		ms.joinedAt = evt.Timestamp

	case EventKindLeave:
		if ms.activeChannel == "" {
			log.Printf("tracking: out-of-order leave for idle member %s in channel %s, ignoring", evt.MemberID, evt.ChannelID)
			return nil
		}
		if ms.activeChannel != evt.ChannelID {
			log.Printf("tracking: out-of-order leave for member %s in channel %s while active in %s, ignoring", evt.MemberID, evt.ChannelID, ms.activeChannel)
			return nil
		}
		a.closeSession(ctx, ms, evt.Timestamp)
	}

	return nil
}

// closeSession closes the member's open session at leaveTime. Sessions shorter
// than the minimum are discarded entirely. The caller must hold ms.mu.
func (a *aggregator) closeSession(ctx context.Context, ms *memberState, leaveTime time.Time) {
	channelID := ms.activeChannel
	joinedAt := ms.joinedAt
	ms.activeChannel = ""
	ms.joinedAt = time.Time{}

	duration := leaveTime.Sub(joinedAt)
	if duration < 0 {
		duration = 0
	}
	if duration < a.minSegment {
		return
	}

	seconds := int64(duration / time.Second)
	ms.closeSeq++
	ms.contrib.ChannelSeconds[channelID] += seconds
	ms.contrib.TotalSeconds += seconds
	ms.reachedSeq[channelID] = ms.closeSeq
	ms.contrib.PrimaryChannelID = primaryChannel(ms.contrib.ChannelSeconds, ms.reachedSeq)

	segment := &models.Segment{
		ID:        a.uuidGen.NewUUID(),
		EventID:   a.event.ID,
		MemberID:  ms.contrib.MemberID,
		ChannelID: channelID,
		JoinTime:  joinedAt,
		LeaveTime: leaveTime,
	}

	a.persist(ctx, segment, ms.contrib)
}

// persist saves a closed segment and the updated aggregate, retrying with
// bounded backoff. On exhaustion the segment is counted as lost but in-memory
// totals are kept; the live aggregate remains the source of truth.
func (a *aggregator) persist(ctx context.Context, segment *models.Segment, contrib *models.Contribution) {
	operation := func() error {
		if err := a.store.SaveSegment(ctx, &participationRepo.SaveSegmentInput{
			Segment: segment,
		}); err != nil {
			return err
		}
		return a.store.UpsertContribution(ctx, &participationRepo.UpsertContributionInput{
			Contribution: contrib,
		})
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.saveRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		atomic.AddInt64(&a.lostSegments, 1)
		log.Printf("tracking: failed to persist segment %s for member %s after retries: %v", segment.ID, segment.MemberID, err)
	}
}

// Stop drains in-flight applies, rejects any further events, and force-closes
// every still-active member at stopTime. It returns the finalized aggregates
// with nonzero totals and the number of segments lost to persistence failures.
func (a *aggregator) Stop(ctx context.Context, stopTime time.Time) ([]*models.Contribution, int) {
	a.drain.Lock()
	defer a.drain.Unlock()

	a.stopped = true

	contributions := make([]*models.Contribution, 0, len(a.members))
	for _, ms := range a.members {
		ms.mu.Lock()
		if ms.activeChannel != "" {
			a.closeSession(ctx, ms, stopTime)
		}
		if ms.contrib.TotalSeconds > 0 {
			contributions = append(contributions, ms.contrib)
		}
		ms.mu.Unlock()
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].MemberID < contributions[j].MemberID
	})

	return contributions, int(atomic.LoadInt64(&a.lostSegments))
}

// Cancel drains in-flight applies and discards all open sessions without
// persisting anything further.
func (a *aggregator) Cancel() {
	a.drain.Lock()
	defer a.drain.Unlock()

	a.stopped = true
	a.members = make(map[string]*memberState)
}

// LiveTotals returns a snapshot of every member's aggregate with the open
// session, if any, extended to now. The snapshot is never persisted.
func (a *aggregator) LiveTotals(now time.Time) []*models.Contribution {
	a.drain.RLock()
	defer a.drain.RUnlock()

	a.membersMu.Lock()
	states := make([]*memberState, 0, len(a.members))
	for _, ms := range a.members {
		states = append(states, ms)
	}
	a.membersMu.Unlock()

	contributions := make([]*models.Contribution, 0, len(states))
	for _, ms := range states {
		ms.mu.Lock()
		snapshot := &models.Contribution{
			EventID:          ms.contrib.EventID,
			MemberID:         ms.contrib.MemberID,
			MemberName:       ms.contrib.MemberName,
			ChannelSeconds:   make(map[string]int64, len(ms.contrib.ChannelSeconds)),
			TotalSeconds:     ms.contrib.TotalSeconds,
			PrimaryChannelID: ms.contrib.PrimaryChannelID,
			IsOrgMember:      ms.contrib.IsOrgMember,
		}
		for channelID, seconds := range ms.contrib.ChannelSeconds {
			snapshot.ChannelSeconds[channelID] = seconds
		}
		if ms.activeChannel != "" {
			open := now.Sub(ms.joinedAt)
			if open > 0 {
				seconds := int64(open / time.Second)
				snapshot.ChannelSeconds[ms.activeChannel] += seconds
				snapshot.TotalSeconds += seconds
			}
		}
		ms.mu.Unlock()
		contributions = append(contributions, snapshot)
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].MemberID < contributions[j].MemberID
	})

	return contributions
}

// primaryChannel returns the channel with the most accumulated seconds. Ties
// go to the channel whose duration reached the shared maximum first.
func primaryChannel(channelSeconds map[string]int64, reachedSeq map[string]int64) string {
	var best string
	var bestSeconds int64 = -1
	var bestSeq int64

	for channelID, seconds := range channelSeconds {
		seq := reachedSeq[channelID]
		switch {
		case seconds > bestSeconds:
			best, bestSeconds, bestSeq = channelID, seconds, seq
		case seconds == bestSeconds && seq < bestSeq:
			best, bestSeq = channelID, seq
		}
	}

	return best
}
