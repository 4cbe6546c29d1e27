package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/veldrin/orepay/internal/services/messaging"
	"github.com/veldrin/orepay/internal/services/payroll"
)

// PayrollCommand handles the /payroll command
type PayrollCommand struct {
	BaseCommand
	payrollService   payroll.Service
	messagingService messaging.Service
}

// NewPayrollCommand creates a new payroll command handler
func NewPayrollCommand(payrollService payroll.Service, messagingService messaging.Service) *PayrollCommand {
	return &PayrollCommand{
		BaseCommand: BaseCommand{
			Name:        "payroll",
			Description: "Mining op payroll commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "begin",
					Description: "Open a payroll calculation for a completed op",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "op",
							Description: "Op ID shown when the op was stopped",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "donate",
					Description: "Choose who donates their share back to the crew",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "op",
							Description: "Op ID the calculation is for",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "donor",
							Description: "Member donating their share",
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "donor2",
							Description: "Second member donating their share",
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "donor3",
							Description: "Third member donating their share",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cargo",
					Description: "Add a mined commodity to the payroll",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "op",
							Description: "Op ID the calculation is for",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "commodity",
							Description: "Ore name, e.g. quantainium",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "quantity",
							Description: "Units collected",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "price",
							Description: "Unit price override; leave empty to use the market price",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "price",
					Description: "Override the unit price of a commodity on the payroll",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "op",
							Description: "Op ID the calculation is for",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "commodity",
							Description: "Ore name to re-price",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "price",
							Description: "Unit price in aUEC",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "market",
					Description: "Store a commodity's market price for future payrolls",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "commodity",
							Description: "Ore name, e.g. quantainium",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "price",
							Description: "Unit price in aUEC",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "preview",
					Description: "Compute and show the payout breakdown without settling",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "op",
							Description: "Op ID the calculation is for",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "distribute",
					Description: "Settle the previewed payroll; this is final",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "op",
							Description: "Op ID the calculation is for",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Discard the in-progress payroll calculation",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "op",
							Description: "Op ID the calculation is for",
							Required:    true,
						},
					},
				},
			},
		},
		payrollService:   payrollService,
		messagingService: messagingService,
	}
}

// Handle processes a Discord interaction for the payroll command
func (c *PayrollCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	username := i.Member.User.Username
	if i.Member.Nick != "" {
		username = i.Member.Nick
	}

	sub := data.Options[0]
	options := optionMap(sub.Options)
	eventID := ""
	if opt, ok := options["op"]; ok {
		eventID = opt.StringValue()
	}

	var err error
	switch sub.Name {
	case "begin":
		err = c.handleBegin(s, i, eventID, username)
	case "donate":
		err = c.handleDonate(s, i, eventID, username, options)
	case "cargo":
		err = c.handleCargo(s, i, eventID, username, options)
	case "price":
		err = c.handlePrice(s, i, eventID, username, options)
	case "market":
		err = c.handleMarket(s, i, options)
	case "preview":
		err = c.handlePreview(s, i, eventID, username)
	case "distribute":
		err = c.handleDistribute(s, i, eventID, username)
	case "cancel":
		err = c.handleCancel(s, i, eventID)
	default:
		err = errors.New("unknown subcommand")
	}

	return err
}

// optionMap indexes subcommand options by name
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

// handleBegin handles the begin subcommand
func (c *PayrollCommand) handleBegin(s *discordgo.Session, i *discordgo.InteractionCreate, eventID, username string) error {
	ctx := context.Background()

	output, err := c.payrollService.BeginCalculation(ctx, &payroll.BeginCalculationInput{
		EventID: eventID,
	})
	if err != nil {
		return c.respondPayrollError(s, i, err, username)
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"Payroll opened for op `%s` with %d miners on the books. Use `/payroll donate` and `/payroll cargo` to build it up.",
		output.EventID, output.ParticipantCount))
}

// handleDonate handles the donate subcommand
func (c *PayrollCommand) handleDonate(s *discordgo.Session, i *discordgo.InteractionCreate, eventID, username string, options map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()

	var donorIDs []string
	for _, name := range []string{"donor", "donor2", "donor3"} {
		if opt, ok := options[name]; ok {
			donorIDs = append(donorIDs, opt.UserValue(nil).ID)
		}
	}

	_, err := c.payrollService.SetDonors(ctx, &payroll.SetDonorsInput{
		EventID:  eventID,
		DonorIDs: donorIDs,
	})
	if err != nil {
		return c.respondPayrollError(s, i, err, username)
	}

	if len(donorIDs) == 0 {
		return RespondWithMessage(s, i, "Nobody donates; everyone keeps their own share.")
	}
	return RespondWithMessage(s, i, fmt.Sprintf(
		"%d donor(s) recorded. Their shares will be split across the rest of the crew.", len(donorIDs)))
}

// handleCargo handles the cargo subcommand. The commodity table is replaced
// wholesale by the service, so the current table is read back first and the
// new line appended to it.
func (c *PayrollCommand) handleCargo(s *discordgo.Session, i *discordgo.InteractionCreate, eventID, username string, options map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()

	state, err := c.payrollService.GetCalculation(ctx, &payroll.GetCalculationInput{
		EventID: eventID,
	})
	if err != nil {
		return c.respondPayrollError(s, i, err, username)
	}

	line := &payroll.CommodityLine{
		Commodity: options["commodity"].StringValue(),
		Quantity:  options["quantity"].IntValue(),
	}
	if opt, ok := options["price"]; ok {
		line.UnitPrice = opt.IntValue()
	}

	lines := append(state.Lines, line)
	_, err = c.payrollService.SetCommodities(ctx, &payroll.SetCommoditiesInput{
		EventID: eventID,
		Lines:   lines,
	})
	if err != nil {
		return c.respondPayrollError(s, i, err, username)
	}

	priceNote := "market price at payout"
	if line.UnitPrice > 0 {
		priceNote = fmt.Sprintf("%d aUEC/unit", line.UnitPrice)
	}
	return RespondWithMessage(s, i, fmt.Sprintf(
		"Added %d units of %s (%s). The payroll now lists %d commodities.",
		line.Quantity, line.Commodity, priceNote, len(lines)))
}

// handlePrice handles the price subcommand
func (c *PayrollCommand) handlePrice(s *discordgo.Session, i *discordgo.InteractionCreate, eventID, username string, options map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()

	commodity := options["commodity"].StringValue()
	unitPrice := options["price"].IntValue()

	_, err := c.payrollService.SetPrices(ctx, &payroll.SetPricesInput{
		EventID: eventID,
		Prices:  map[string]int64{commodity: unitPrice},
	})
	if err != nil {
		return c.respondPayrollError(s, i, err, username)
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"%s re-priced at %d aUEC/unit. Run `/payroll preview` to see the new numbers.", commodity, unitPrice))
}

// handleMarket handles the market subcommand
func (c *PayrollCommand) handleMarket(s *discordgo.Session, i *discordgo.InteractionCreate, options map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()

	output, err := c.payrollService.UpdateMarketPrice(ctx, &payroll.UpdateMarketPriceInput{
		Commodity: options["commodity"].StringValue(),
		UnitPrice: options["price"].IntValue(),
	})
	if err != nil {
		log.Printf("Error updating market price: %v", err)
		return RespondWithError(s, i, "Payroll Error", "Could not store the market price. Try again in a moment.")
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"Market price stored: %s at %d aUEC/unit. Payrolls without an override will use it.",
		output.Commodity, output.UnitPrice))
}

// handlePreview handles the preview subcommand
func (c *PayrollCommand) handlePreview(s *discordgo.Session, i *discordgo.InteractionCreate, eventID, username string) error {
	ctx := context.Background()

	output, err := c.payrollService.Finalize(ctx, &payroll.FinalizeInput{
		EventID: eventID,
	})
	if err != nil {
		return c.respondPayrollError(s, i, err, username)
	}

	return RespondWithEmbed(s, i, "Payroll Preview",
		"Nothing is settled yet. Adjust prices and preview again, or `/payroll distribute` to lock it in.",
		renderResultFields(output.Result))
}

// handleDistribute handles the distribute subcommand
func (c *PayrollCommand) handleDistribute(s *discordgo.Session, i *discordgo.InteractionCreate, eventID, username string) error {
	ctx := context.Background()

	output, err := c.payrollService.Distribute(ctx, &payroll.DistributeInput{
		EventID: eventID,
	})
	if err != nil {
		return c.respondPayrollError(s, i, err, username)
	}

	headline := "Payroll distributed!"
	summary, msgErr := c.messagingService.GetPayrollSummaryMessage(ctx, &messaging.GetPayrollSummaryMessageInput{
		TotalValue:      output.Result.TotalValue,
		MemberCount:     len(output.Result.Shares),
		UnassignedValue: output.Result.UnassignedValue,
	})
	if msgErr == nil {
		headline = summary.Message
	}

	return RespondWithEmbed(s, i, "Payroll Distributed", headline,
		renderResultFields(output.Result))
}

// handleCancel handles the cancel subcommand
func (c *PayrollCommand) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, eventID string) error {
	ctx := context.Background()

	output, err := c.payrollService.CancelCalculation(ctx, &payroll.CancelCalculationInput{
		EventID: eventID,
	})
	if err != nil {
		log.Printf("Error cancelling calculation for event %s: %v", eventID, err)
		return RespondWithError(s, i, "Payroll Error", "Could not cancel the calculation. Try again in a moment.")
	}

	if !output.Cancelled {
		return RespondWithEphemeralMessage(s, i, "There was no payroll calculation in progress for that op.")
	}
	return RespondWithMessage(s, i, "Payroll calculation discarded. `/payroll begin` starts a fresh one.")
}

// respondPayrollError maps service errors onto user-facing messages
func (c *PayrollCommand) respondPayrollError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, username string) error {
	errorType := ""
	switch {
	case errors.Is(err, payroll.ErrNoParticipation):
		errorType = "no_participation"
	case errors.Is(err, payroll.ErrCalculationInProgress):
		errorType = "calculation_in_progress"
	case errors.Is(err, payroll.ErrCalculationNotFound):
		return RespondWithEphemeralMessage(s, i, "No payroll calculation is in progress for that op. Use `/payroll begin` first.")
	case errors.Is(err, payroll.ErrEventNotCompleted):
		return RespondWithError(s, i, "Payroll Error", "That op hasn't been stopped yet. Payroll runs on completed ops only.")
	case errors.Is(err, payroll.ErrInvalidStage):
		return RespondWithError(s, i, "Payroll Error", "That step doesn't fit where the calculation currently is.")
	case errors.Is(err, payroll.ErrInvalidDonorState):
		return RespondWithError(s, i, "Payroll Error", "One of those donors has no counted time on this op.")
	default:
		log.Printf("Payroll command error: %v", err)
		return RespondWithError(s, i, "Payroll Error", "That didn't work. Try again in a moment.")
	}

	output, msgErr := c.messagingService.GetErrorMessage(context.Background(), &messaging.GetErrorMessageInput{
		ErrorType:  errorType,
		MemberName: username,
	})
	if msgErr != nil {
		return RespondWithError(s, i, "Payroll Error", "That didn't work. Try again in a moment.")
	}
	return RespondWithError(s, i, output.Title, output.Message)
}
