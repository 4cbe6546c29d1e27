package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNotification(t *testing.T) {
	ts := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	tracked := map[string]struct{}{
		"channel-a": {},
		"channel-b": {},
	}

	tests := []struct {
		name         string
		notification *VoiceNotification
		want         []*PresenceEvent
	}{
		{
			name: "plain join",
			notification: &VoiceNotification{
				MemberID:    "member-1",
				ToChannelID: "channel-a",
				Timestamp:   ts,
			},
			want: []*PresenceEvent{
				{MemberID: "member-1", ChannelID: "channel-a", Kind: EventKindJoin, Timestamp: ts},
			},
		},
		{
			name: "plain leave",
			notification: &VoiceNotification{
				MemberID:      "member-1",
				FromChannelID: "channel-a",
				Timestamp:     ts,
			},
			want: []*PresenceEvent{
				{MemberID: "member-1", ChannelID: "channel-a", Kind: EventKindLeave, Timestamp: ts},
			},
		},
		{
			name: "move splits into leave then join at the same timestamp",
			notification: &VoiceNotification{
				MemberID:      "member-1",
				FromChannelID: "channel-a",
				ToChannelID:   "channel-b",
				Timestamp:     ts,
			},
			want: []*PresenceEvent{
				{MemberID: "member-1", ChannelID: "channel-a", Kind: EventKindLeave, Timestamp: ts},
				{MemberID: "member-1", ChannelID: "channel-b", Kind: EventKindJoin, Timestamp: ts},
			},
		},
		{
			name: "untracked channels are dropped",
			notification: &VoiceNotification{
				MemberID:      "member-1",
				FromChannelID: "afk-channel",
				ToChannelID:   "lobby",
				Timestamp:     ts,
			},
			want: []*PresenceEvent{},
		},
		{
			name: "move from untracked into tracked keeps only the join",
			notification: &VoiceNotification{
				MemberID:      "member-1",
				FromChannelID: "lobby",
				ToChannelID:   "channel-b",
				Timestamp:     ts,
			},
			want: []*PresenceEvent{
				{MemberID: "member-1", ChannelID: "channel-b", Kind: EventKindJoin, Timestamp: ts},
			},
		},
		{
			name: "move from tracked into untracked keeps only the leave",
			notification: &VoiceNotification{
				MemberID:      "member-1",
				FromChannelID: "channel-a",
				ToChannelID:   "lobby",
				Timestamp:     ts,
			},
			want: []*PresenceEvent{
				{MemberID: "member-1", ChannelID: "channel-a", Kind: EventKindLeave, Timestamp: ts},
			},
		},
		{
			name:         "nil notification",
			notification: nil,
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeNotification(tt.notification, tracked)
			assert.Equal(t, len(tt.want), len(got))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].ChannelID, got[i].ChannelID)
				assert.Equal(t, tt.want[i].Kind, got[i].Kind)
				assert.Equal(t, tt.want[i].Timestamp, got[i].Timestamp)
				assert.Equal(t, tt.want[i].MemberID, got[i].MemberID)
			}
		})
	}
}

func TestPrimaryChannelTieBreak(t *testing.T) {
	// Equal totals: the channel that reached the maximum first wins
	seconds := map[string]int64{
		"channel-a": 2400,
		"channel-b": 2400,
	}
	reached := map[string]int64{
		"channel-a": 1,
		"channel-b": 2,
	}
	assert.Equal(t, "channel-a", primaryChannel(seconds, reached))

	// A strictly larger total always wins regardless of order
	seconds["channel-b"] = 3000
	assert.Equal(t, "channel-b", primaryChannel(seconds, reached))
}
