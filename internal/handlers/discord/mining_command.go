package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/veldrin/orepay/internal/services/messaging"
	"github.com/veldrin/orepay/internal/services/tracking"
)

// MiningCommand handles the /mining command
type MiningCommand struct {
	BaseCommand
	trackingService  tracking.Service
	messagingService messaging.Service
}

// NewMiningCommand creates a new mining command handler
func NewMiningCommand(trackingService tracking.Service, messagingService messaging.Service) *MiningCommand {
	voiceChannel := []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice}

	return &MiningCommand{
		BaseCommand: BaseCommand{
			Name:        "mining",
			Description: "Mining op time tracking commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start a mining op and begin tracking voice channels",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Voice channel to track",
							ChannelTypes: voiceChannel,
							Required:     true,
						},
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel2",
							Description:  "Second voice channel to track",
							ChannelTypes: voiceChannel,
						},
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel3",
							Description:  "Third voice channel to track",
							ChannelTypes: voiceChannel,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Stop the running op and lock in everyone's time",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Void the running op; no time counts",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show live time totals for the running op",
				},
			},
		},
		trackingService:  trackingService,
		messagingService: messagingService,
	}
}

// Handle processes a Discord interaction for the mining command
func (c *MiningCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	guildID := i.GuildID
	userID := i.Member.User.ID
	username := i.Member.User.Username
	if i.Member.Nick != "" {
		username = i.Member.Nick
	}

	var err error
	switch data.Options[0].Name {
	case "start":
		err = c.handleStart(s, i, guildID, userID, username, data.Options[0].Options)
	case "stop":
		err = c.handleStop(s, i, guildID, username)
	case "cancel":
		err = c.handleCancel(s, i, guildID, username)
	case "status":
		err = c.handleStatus(s, i, guildID)
	default:
		err = errors.New("unknown subcommand")
	}

	return err
}

// handleStart handles the start subcommand
func (c *MiningCommand) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID, username string, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()

	var channelIDs []string
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionChannel {
			channelIDs = append(channelIDs, opt.ChannelValue(nil).ID)
		}
	}

	output, err := c.trackingService.StartEvent(ctx, &tracking.StartEventInput{
		GuildID:           guildID,
		CreatedBy:         userID,
		TrackedChannelIDs: channelIDs,
	})
	if err != nil {
		if errors.Is(err, tracking.ErrActiveEventExists) {
			return c.respondServiceError(s, i, "active_event_exists", username)
		}
		log.Printf("Error starting event for guild %s: %v", guildID, err)
		return RespondWithError(s, i, "Mining Op Error", "Could not start the op. Try again in a moment.")
	}

	announcement, err := c.messagingService.GetEventStartMessage(ctx, &messaging.GetEventStartMessageInput{
		ChannelCount: len(output.Event.TrackedChannelIDs),
	})
	if err != nil {
		return RespondWithMessage(s, i, "Mining op started!")
	}

	return RespondWithMessage(s, i, announcement.Message)
}

// handleStop handles the stop subcommand
func (c *MiningCommand) handleStop(s *discordgo.Session, i *discordgo.InteractionCreate, guildID, username string) error {
	ctx := context.Background()

	output, err := c.trackingService.StopEvent(ctx, &tracking.StopEventInput{
		GuildID: guildID,
	})
	if err != nil {
		if errors.Is(err, tracking.ErrNoActiveEvent) {
			return c.respondServiceError(s, i, "no_active_event", username)
		}
		log.Printf("Error stopping event for guild %s: %v", guildID, err)
		return RespondWithError(s, i, "Mining Op Error", "Could not stop the op. Try again in a moment.")
	}

	announcement, msgErr := c.messagingService.GetEventStopMessage(ctx, &messaging.GetEventStopMessageInput{
		ParticipantCount: len(output.Contributions),
		LostSegments:     output.LostSegments,
	})
	description := "The op is closed and everyone's time is locked in."
	if msgErr == nil {
		description = announcement.Message
	}
	description += fmt.Sprintf("\n\nOp ID: `%s` — use it with `/payroll begin`.", output.Event.ID)

	return RespondWithEmbed(s, i, "Mining Op Complete", description,
		renderContributionFields(output.Contributions))
}

// handleCancel handles the cancel subcommand
func (c *MiningCommand) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, guildID, username string) error {
	ctx := context.Background()

	_, err := c.trackingService.CancelEvent(ctx, &tracking.CancelEventInput{
		GuildID: guildID,
	})
	if err != nil {
		if errors.Is(err, tracking.ErrNoActiveEvent) {
			return c.respondServiceError(s, i, "no_active_event", username)
		}
		log.Printf("Error cancelling event for guild %s: %v", guildID, err)
		return RespondWithError(s, i, "Mining Op Error", "Could not cancel the op. Try again in a moment.")
	}

	return RespondWithMessage(s, i, "Op cancelled. No time counts and no payroll will run.")
}

// handleStatus handles the status subcommand
func (c *MiningCommand) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, guildID string) error {
	ctx := context.Background()

	output, err := c.trackingService.GetLiveTotals(ctx, &tracking.GetLiveTotalsInput{
		GuildID: guildID,
	})
	if err != nil {
		if errors.Is(err, tracking.ErrNoActiveEvent) {
			return RespondWithEphemeralMessage(s, i, "No op is running right now.")
		}
		log.Printf("Error fetching live totals for guild %s: %v", guildID, err)
		return RespondWithError(s, i, "Mining Op Error", "Could not fetch live totals. Try again in a moment.")
	}

	if len(output.Contributions) == 0 {
		return RespondWithEphemeralMessage(s, i, "The op is running but nobody has counted time yet.")
	}

	return RespondWithEmbed(s, i, "Mining Op Status",
		"Live time totals, including miners still in a channel.",
		renderContributionFields(output.Contributions))
}

// respondServiceError renders a flavored error through the messaging service
func (c *MiningCommand) respondServiceError(s *discordgo.Session, i *discordgo.InteractionCreate, errorType, username string) error {
	output, err := c.messagingService.GetErrorMessage(context.Background(), &messaging.GetErrorMessageInput{
		ErrorType:  errorType,
		MemberName: username,
	})
	if err != nil {
		return RespondWithError(s, i, "Mining Op Error", "That didn't work. Try again in a moment.")
	}
	return RespondWithError(s, i, output.Title, output.Message)
}
