package messaging

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// service implements the Service interface
type service struct {
	// Random number generator for selecting random messages
	rand *rand.Rand
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	source := rand.NewSource(time.Now().UnixNano())

	return &service{
		rand: rand.New(source),
	}, nil
}

// GetEventStartMessage returns an announcement for a mining event starting
func (s *service) GetEventStartMessage(ctx context.Context, input *GetEventStartMessageInput) (*GetEventStartMessageOutput, error) {
	tone := input.PreferredTone
	if tone == "" {
		tone = ToneFunny
	}

	messages := []string{
		fmt.Sprintf("⛏️ Mining op is live! Clock's running across %d channels. Get in a rock and start earning.", input.ChannelCount),
		"The drills are spinning and so is the clock. Hop in a mining channel to get on the payroll!",
		fmt.Sprintf("Op started! %d channels tracked. Every minute in the rocks is a minute on the books.", input.ChannelCount),
		"Lasers hot, ledgers open. Join a tracked channel and your time starts counting.",
		"New mining op underway. Show up, dig up, get paid up.",
	}

	return &GetEventStartMessageOutput{
		Message: messages[s.rand.Intn(len(messages))],
		Tone:    tone,
	}, nil
}

// GetEventStopMessage returns an announcement for a mining event ending
func (s *service) GetEventStopMessage(ctx context.Context, input *GetEventStopMessageInput) (*GetEventStopMessageOutput, error) {
	tone := input.PreferredTone
	if tone == "" {
		tone = ToneFunny
	}

	var messages []string
	if input.ParticipantCount == 0 {
		messages = []string{
			"Op's over and... nobody showed? The rocks mined themselves, apparently.",
			"Event closed with zero miners on the clock. The asteroids live to see another day.",
			"That's a wrap — on absolutely nothing. No counted time, no payroll.",
		}
	} else {
		messages = []string{
			fmt.Sprintf("Op's done! %d miners clocked time. Payroll when the ore sells — don't wander off.", input.ParticipantCount),
			fmt.Sprintf("Drills down, hands up. %d of you are on the books. Time to turn rocks into credits.", input.ParticipantCount),
			fmt.Sprintf("That's a wrap! %d miners logged. The refinery line starts now.", input.ParticipantCount),
		}
	}

	message := messages[s.rand.Intn(len(messages))]
	if input.LostSegments > 0 {
		message += fmt.Sprintf(" (heads up: %d stays couldn't be saved and may need a manual check)", input.LostSegments)
	}

	return &GetEventStopMessageOutput{
		Message: message,
		Tone:    tone,
	}, nil
}

// GetPayrollSummaryMessage returns a headline for a distributed payroll
func (s *service) GetPayrollSummaryMessage(ctx context.Context, input *GetPayrollSummaryMessageInput) (*GetPayrollSummaryMessageOutput, error) {
	tone := input.PreferredTone
	if tone == "" {
		tone = ToneFunny
	}

	messages := []string{
		fmt.Sprintf("💰 Payday! %d aUEC split across %d miners. Don't spend it all on one ship.", input.TotalValue, input.MemberCount),
		fmt.Sprintf("The books are settled: %d aUEC out to %d of you. Pleasure doing business.", input.TotalValue, input.MemberCount),
		fmt.Sprintf("Payroll's through! %d aUEC for %d hard-working rock-breakers.", input.TotalValue, input.MemberCount),
	}

	message := messages[s.rand.Intn(len(messages))]
	if input.UnassignedValue > 0 {
		message += fmt.Sprintf(" %d aUEC was donated with no one left to take it — it stays with the org.", input.UnassignedValue)
	}

	return &GetPayrollSummaryMessageOutput{
		Message: message,
		Tone:    tone,
	}, nil
}

// GetErrorMessage returns a user-friendly error message
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	var messages []string

	switch input.ErrorType {
	case "active_event_exists":
		messages = []string{
			fmt.Sprintf("Easy, %s! There's already an op running. One payroll at a time.", input.MemberName),
			"An op is already underway. Stop or cancel it before starting another.",
			fmt.Sprintf("%s, the clock is already running on another op. Finish that one first!", input.MemberName),
		}
	case "no_active_event":
		messages = []string{
			"No op is running right now. Start one before the miners get restless.",
			fmt.Sprintf("Nothing to do here, %s — there's no active op for this server.", input.MemberName),
			"The drills are cold. Start an op first.",
		}
	case "no_participation":
		messages = []string{
			"Nobody logged any counted time, so there's nothing to pay out.",
			"An empty roster means an empty payroll. No counted time was recorded.",
		}
	case "calculation_in_progress":
		messages = []string{
			"A payroll pass is already being worked on for that op. Finish or cancel it first.",
			fmt.Sprintf("Hold on, %s — someone's already at the books for that op.", input.MemberName),
		}
	default:
		messages = []string{
			fmt.Sprintf("Sorry %s, that didn't work. Try again in a moment.", input.MemberName),
			"Something went sideways. Give it another shot.",
		}
	}

	return &GetErrorMessageOutput{
		Title:   "Mining Op Error",
		Message: messages[s.rand.Intn(len(messages))],
	}, nil
}
