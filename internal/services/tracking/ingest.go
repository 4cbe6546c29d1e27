package tracking

// normalizeNotification converts a raw voice-state change into canonical
// presence events for the channels tracked by the active event. A move between
// two tracked channels is split into a leave followed by a join at the
// identical timestamp, so a member is never credited in two channels at once.
// Channels outside the tracked set are dropped.
func normalizeNotification(n *VoiceNotification, tracked map[string]struct{}) []*PresenceEvent {
	if n == nil {
		return nil
	}

	events := make([]*PresenceEvent, 0, 2)

	if n.FromChannelID != "" {
		if _, ok := tracked[n.FromChannelID]; ok {
			events = append(events, &PresenceEvent{
				MemberID:    n.MemberID,
				MemberName:  n.MemberName,
				ChannelID:   n.FromChannelID,
				Kind:        EventKindLeave,
				Timestamp:   n.Timestamp,
				IsOrgMember: n.IsOrgMember,
			})
		}
	}

	if n.ToChannelID != "" {
		if _, ok := tracked[n.ToChannelID]; ok {
			events = append(events, &PresenceEvent{
				MemberID:    n.MemberID,
				MemberName:  n.MemberName,
				ChannelID:   n.ToChannelID,
				Kind:        EventKindJoin,
				Timestamp:   n.Timestamp,
				IsOrgMember: n.IsOrgMember,
			})
		}
	}

	return events
}
