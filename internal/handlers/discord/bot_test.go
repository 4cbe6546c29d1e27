package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldrin/orepay/internal/services/messaging"
	"github.com/veldrin/orepay/internal/services/payroll"
	"github.com/veldrin/orepay/internal/services/tracking"
)

// stubTrackingService records voice notifications; other operations are never
// called by these tests
type stubTrackingService struct {
	tracking.Service
	notifications []*tracking.VoiceNotification
}

func (s *stubTrackingService) HandleVoiceNotification(ctx context.Context, input *tracking.HandleVoiceNotificationInput) (*tracking.HandleVoiceNotificationOutput, error) {
	s.notifications = append(s.notifications, input.Notification)
	return &tracking.HandleVoiceNotificationOutput{}, nil
}

type stubPayrollService struct {
	payroll.Service
}

func newTestBot(t *testing.T) (*Bot, *stubTrackingService) {
	t.Helper()

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{})
	require.NoError(t, err)

	trackingSvc := &stubTrackingService{}
	bot, err := New(&Config{
		Token:            "test-token",
		OrgRoleID:        "org-role-id",
		TrackingService:  trackingSvc,
		PayrollService:   &stubPayrollService{},
		MessagingService: messagingSvc,
	})
	require.NoError(t, err)
	return bot, trackingSvc
}

func TestNewDispatchesGatewayEventsInOrder(t *testing.T) {
	bot, _ := newTestBot(t)

	// Per-member session state requires voice updates in arrival order; the
	// default per-event goroutine dispatch can swap two rapid updates for the
	// same member.
	assert.True(t, bot.session.SyncEvents)
	assert.NotZero(t, bot.session.Identify.Intents&discordgo.IntentsGuildVoiceStates)
}

func TestVoiceStateUpdateForwarding(t *testing.T) {
	bot, trackingSvc := newTestBot(t)

	bot.handleVoiceStateUpdate(nil, &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{
			GuildID:   "guild-1",
			ChannelID: "channel-b",
			UserID:    "member-1",
			Member: &discordgo.Member{
				Nick:  "Ore Hauler",
				Roles: []string{"org-role-id"},
				User:  &discordgo.User{Username: "hauler"},
			},
		},
		BeforeUpdate: &discordgo.VoiceState{
			ChannelID: "channel-a",
		},
	})

	require.Len(t, trackingSvc.notifications, 1)
	n := trackingSvc.notifications[0]
	assert.Equal(t, "guild-1", n.GuildID)
	assert.Equal(t, "member-1", n.MemberID)
	assert.Equal(t, "Ore Hauler", n.MemberName)
	assert.Equal(t, "channel-a", n.FromChannelID)
	assert.Equal(t, "channel-b", n.ToChannelID)
	assert.True(t, n.IsOrgMember)
	assert.True(t, n.Timestamp.IsZero())
}

func TestVoiceStateUpdateIgnoresMuteToggles(t *testing.T) {
	bot, trackingSvc := newTestBot(t)

	// Same channel before and after means no presence change
	bot.handleVoiceStateUpdate(nil, &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{
			GuildID:   "guild-1",
			ChannelID: "channel-a",
			UserID:    "member-1",
			SelfMute:  true,
		},
		BeforeUpdate: &discordgo.VoiceState{
			ChannelID: "channel-a",
		},
	})

	assert.Empty(t, trackingSvc.notifications)
}
