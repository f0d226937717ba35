package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/pitytrack/trackbot"
	"github.com/ellavondegurechaff/pitytrack/trackbot/config"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/utils"
)

var Currency = discord.SlashCommandCreate{
	Name:        "currency",
	Description: "💎 Track premium currency and pull tokens",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "install",
			Description: "Install currency tracking for this channel's game",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "Starting currency amount",
					Required:    false,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "tokens",
					Description: "Starting pull tokens",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "status",
			Description: "Show the current amounts and goal",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Add or subtract currency",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "Signed amount",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "note",
					Description: "Optional note for the log",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "tokens",
			Description: "Add or subtract pull tokens",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "Signed amount",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "note",
					Description: "Optional note for the log",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "goal",
			Description: "Set a savings goal, 0 clears it",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "Goal amount, 0 to clear",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "history",
			Description: "Show the latest currency actions",
		},
	},
}

func CurrencyHandler(b *trackbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()

		game := b.GameService.GetGameForChannel(ctx, e.ChannelID().String())
		if !game.Success {
			return utils.RespondFailure(e, game)
		}
		gameID := game.Data.ID

		switch *data.SubCommandName {
		case "install":
			res := b.CurrencyService.Install(ctx, gameID, int64(data.Int("amount")), int64(data.Int("tokens")))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Currency tracking installed for **%s**", game.Data.Name))

		case "status":
			res := b.CurrencyService.Status(ctx, gameID)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			now := time.Now()
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       fmt.Sprintf("💎 %s Currency", game.Data.Name),
					Description: currencyStatus(res.Data),
					Color:       config.EmbedDefaultColor,
					Timestamp:   &now,
				}},
			})

		case "add":
			res := b.CurrencyService.Adjust(ctx, gameID, int64(data.Int("amount")), data.String("note"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Adjusted currency by %s", utils.FormatNumber(int64(data.Int("amount")))))

		case "tokens":
			res := b.CurrencyService.AdjustTokens(ctx, gameID, int64(data.Int("amount")), data.String("note"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Adjusted pull tokens by %s", utils.FormatNumber(int64(data.Int("amount")))))

		case "goal":
			amount := int64(data.Int("amount"))
			if amount == 0 {
				res := b.CurrencyService.UnsetGoal(ctx, gameID)
				if !res.Success {
					return utils.RespondFailure(e, res)
				}
				return utils.EH.CreateSuccessEmbed(e, "Goal cleared")
			}
			res := b.CurrencyService.SetGoal(ctx, gameID, amount)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Goal set to %s", utils.FormatNumber(amount)))

		case "history":
			res := b.CurrencyService.History(ctx, gameID, b.SettingsService.PageSize())
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			var sb strings.Builder
			for _, log := range res.Data {
				sb.WriteString(fmt.Sprintf("`%s` %s %s",
					log.Action, utils.FormatNumber(log.Amount), utils.FormatLocalTime(log.CreatedAt)))
				if log.Note != "" {
					sb.WriteString(fmt.Sprintf(" — %s", log.Note))
				}
				sb.WriteString("\n")
			}
			now := time.Now()
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       fmt.Sprintf("💎 %s Currency Log", game.Data.Name),
					Description: sb.String(),
					Color:       config.EmbedDefaultColor,
					Timestamp:   &now,
				}},
			})
		}

		return utils.EH.CreateErrorEmbed(e, "Unknown subcommand")
	}
}

func currencyStatus(gc *models.GameCurrency) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Currency: **%s**\nPull tokens: **%s**\n",
		utils.FormatNumber(gc.Currency), utils.FormatNumber(gc.PullTokens)))
	if gc.Goal != nil && *gc.Goal > 0 {
		progress := float64(gc.Currency) / float64(*gc.Goal) * 100
		if progress > 100 {
			progress = 100
		}
		sb.WriteString(fmt.Sprintf("Goal: %s (%.1f%%)\n", utils.FormatNumber(*gc.Goal), progress))
	}
	return sb.String()
}
