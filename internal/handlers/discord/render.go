package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/veldrin/orepay/internal/models"
	"github.com/veldrin/orepay/internal/services/payroll"
)

// maxEmbedLines caps how many per-member lines go into one embed field
const maxEmbedLines = 20

// renderContributionFields renders member time totals as embed fields
func renderContributionFields(contributions []*models.Contribution) []*discordgo.MessageEmbedField {
	if len(contributions) == 0 {
		return nil
	}

	var lines []string
	for idx, contrib := range contributions {
		if idx >= maxEmbedLines {
			lines = append(lines, fmt.Sprintf("…and %d more", len(contributions)-maxEmbedLines))
			break
		}

		name := contrib.MemberName
		if name == "" {
			name = contrib.MemberID
		}
		marker := ""
		if contrib.IsOrgMember {
			marker = " ⭐"
		}
		lines = append(lines, fmt.Sprintf("**%s**%s — %s in <#%s>",
			name, marker, formatDuration(contrib.TotalSeconds), contrib.PrimaryChannelID))
	}

	return []*discordgo.MessageEmbedField{
		{
			Name:  fmt.Sprintf("Miners (%d)", len(contributions)),
			Value: strings.Join(lines, "\n"),
		},
	}
}

// renderResultFields renders a payroll result as embed fields
func renderResultFields(result *payroll.Result) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Pool",
			Value:  fmt.Sprintf("%d aUEC", result.TotalValue),
			Inline: true,
		},
		{
			Name:   "Crew Time",
			Value:  formatDuration(result.TotalSeconds),
			Inline: true,
		},
	}

	var lines []string
	for idx, share := range result.Shares {
		if idx >= maxEmbedLines {
			lines = append(lines, fmt.Sprintf("…and %d more", len(result.Shares)-maxEmbedLines))
			break
		}

		name := share.MemberName
		if name == "" {
			name = share.MemberID
		}

		switch {
		case share.IsDonor:
			lines = append(lines, fmt.Sprintf("**%s** — donated %d aUEC 💝", name, share.BaseShare))
		case share.DonationBonus > 0:
			lines = append(lines, fmt.Sprintf("**%s** — %d aUEC (%d + %d bonus)",
				name, share.FinalPayout, share.BaseShare, share.DonationBonus))
		default:
			lines = append(lines, fmt.Sprintf("**%s** — %d aUEC", name, share.FinalPayout))
		}
	}

	if len(lines) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Payouts",
			Value: strings.Join(lines, "\n"),
		})
	}

	if len(result.PricedExcluded) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Excluded (no price)",
			Value: strings.Join(result.PricedExcluded, ", "),
		})
	}

	if result.UnassignedValue > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Unassigned",
			Value:  fmt.Sprintf("%d aUEC", result.UnassignedValue),
			Inline: true,
		})
	}

	return fields
}

// formatDuration renders seconds as 1h23m or 45m
func formatDuration(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}
