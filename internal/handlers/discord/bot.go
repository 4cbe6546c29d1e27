package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/veldrin/orepay/internal/services/messaging"
	"github.com/veldrin/orepay/internal/services/payroll"
	"github.com/veldrin/orepay/internal/services/tracking"
)

// Bot represents the Discord bot instance
type Bot struct {
	session          *discordgo.Session
	commands         map[string]CommandHandler
	commandIDs       map[string]string // Maps command name to command ID
	trackingService  tracking.Service
	payrollService   payroll.Service
	messagingService messaging.Service
	config           *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// Optional role that marks full org members on payouts
	OrgRoleID string

	// Services
	TrackingService  tracking.Service
	PayrollService   payroll.Service
	MessagingService messaging.Service
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.TrackingService == nil {
		return nil, errors.New("tracking service cannot be nil")
	}

	if cfg.PayrollService == nil {
		return nil, errors.New("payroll service cannot be nil")
	}

	if cfg.MessagingService == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Voice state intents on top of the defaults
	session.Identify.Intents |= discordgo.IntentsGuildVoiceStates

	// Dispatch gateway events synchronously. The default one-goroutine-per-
	// event dispatch can deliver two voice updates for the same member in
	// swapped order, which corrupts that member's session state machine. The
	// voice handler is non-blocking and the tracking service handles
	// cross-member concurrency itself.
	session.SyncEvents = true

	bot := &Bot{
		session:          session,
		commands:         make(map[string]CommandHandler),
		commandIDs:       make(map[string]string),
		trackingService:  cfg.TrackingService,
		payrollService:   cfg.PayrollService,
		messagingService: cfg.MessagingService,
		config:           cfg,
	}

	session.AddHandler(bot.handleInteraction)
	session.AddHandler(bot.handleVoiceStateUpdate)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	miningCmd := NewMiningCommand(b.trackingService, b.messagingService)
	if err := b.RegisterCommand(miningCmd); err != nil {
		return fmt.Errorf("failed to register mining command: %w", err)
	}

	payrollCmd := NewPayrollCommand(b.payrollService, b.messagingService)
	if err := b.RegisterCommand(payrollCmd); err != nil {
		return fmt.Errorf("failed to register payroll command: %w", err)
	}

	log.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	appID := b.config.ApplicationID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	guildID := ""
	if b.config.GuildID != "" {
		guildID = b.config.GuildID
	}

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, guildID, cmdID); err != nil {
			log.Printf("Failed to delete command %s (ID: %s): %v", cmdName, cmdID, err)
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	appID := b.config.ApplicationID
	if appID == "" {
		// Fall back to session user ID if application ID is not provided
		appID = b.session.State.User.ID
	}

	// If guild ID is provided, register command for that specific guild.
	// Otherwise, register it globally.
	guildID := ""
	if b.config.GuildID != "" {
		guildID = b.config.GuildID
		log.Printf("Registering command %s for guild %s", cmd.GetName(), guildID)
	} else {
		log.Printf("Registering command %s globally", cmd.GetName())
	}

	createdCmd, err := b.session.ApplicationCommandCreate(appID, guildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	log.Printf("Registered command: %s with ID: %s", cmd.GetName(), createdCmd.ID)

	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			if err := h.Handle(s, i); err != nil {
				log.Printf("Error handling command %s: %v", i.ApplicationCommandData().Name, err)
			}
		}
	}
}

// handleVoiceStateUpdate feeds raw voice-state changes into the tracking
// service. The service decides whether the change matters; changes for
// guilds without an active event are dropped there.
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v == nil || v.UserID == "" {
		return
	}

	fromChannelID := ""
	if v.BeforeUpdate != nil {
		fromChannelID = v.BeforeUpdate.ChannelID
	}

	// Mute/deafen toggles arrive as voice-state updates with no channel change
	if fromChannelID == v.ChannelID {
		return
	}

	memberName := v.UserID
	isOrgMember := false
	if v.Member != nil {
		if v.Member.User != nil {
			memberName = v.Member.User.Username
		}
		if v.Member.Nick != "" {
			memberName = v.Member.Nick
		}
		if b.config.OrgRoleID != "" {
			for _, role := range v.Member.Roles {
				if role == b.config.OrgRoleID {
					isOrgMember = true
					break
				}
			}
		}
	}

	// Timestamp left zero; the tracking service stamps it with its clock
	_, err := b.trackingService.HandleVoiceNotification(context.Background(), &tracking.HandleVoiceNotificationInput{
		Notification: &tracking.VoiceNotification{
			GuildID:       v.GuildID,
			MemberID:      v.UserID,
			MemberName:    memberName,
			FromChannelID: fromChannelID,
			ToChannelID:   v.ChannelID,
			IsOrgMember:   isOrgMember,
		},
	})
	if err != nil {
		log.Printf("Error handling voice state update for %s: %v", v.UserID, err)
	}
}
