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
	"github.com/ellavondegurechaff/pitytrack/trackbot/services"
	"github.com/ellavondegurechaff/pitytrack/trackbot/utils"
)

var Game = discord.SlashCommandCreate{
	Name:        "game",
	Description: "🎮 Manage the games tracked in this server",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Register a game in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Game name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List all registered games",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "info",
			Description: "Show the game tracked in this channel",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "rename",
			Description: "Rename the game tracked in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "New game name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete",
			Description: "Delete the game tracked in this channel",
		},
	},
}

func GameHandler(b *trackbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		channelID := e.ChannelID().String()

		switch *data.SubCommandName {
		case "add":
			res := b.GameService.CreateGame(ctx, data.String("name"), channelID)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Registered **%s** in this channel", res.Data.Name))

		case "list":
			res := b.GameService.ListGames(ctx)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			var sb strings.Builder
			for _, game := range res.Data {
				sb.WriteString(fmt.Sprintf("`#%d` **%s** <#%s>\n", game.ID, game.Name, game.ChannelID))
			}
			now := time.Now()
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "🎮 Registered Games",
					Description: sb.String(),
					Color:       config.EmbedDefaultColor,
					Timestamp:   &now,
				}},
			})

		case "info":
			game := b.GameService.GetGameForChannel(ctx, channelID)
			if !game.Success {
				return utils.RespondFailure(e, game)
			}
			res := b.GameService.Summary(ctx, game.Data.ID)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{buildSummaryEmbed(res.Data)},
			})

		case "rename":
			game := b.GameService.GetGameForChannel(ctx, channelID)
			if !game.Success {
				return utils.RespondFailure(e, game)
			}
			res := b.GameService.RenameGame(ctx, game.Data.ID, data.String("name"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Renamed **%s** to **%s**", game.Data.Name, data.String("name")))

		case "delete":
			game := b.GameService.GetGameForChannel(ctx, channelID)
			if !game.Success {
				return utils.RespondFailure(e, game)
			}
			res := b.GameService.DeleteGame(ctx, game.Data.ID)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted **%s**", game.Data.Name))
		}

		return utils.EH.CreateErrorEmbed(e, "Unknown subcommand")
	}
}

func buildSummaryEmbed(summary *services.GameSummary) discord.Embed {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Registered %s\n\n", utils.FormatLocalTime(summary.Game.CreatedAt)))

	if len(summary.Banners) == 0 {
		sb.WriteString("No banners yet\n")
	} else {
		for _, banner := range summary.Banners {
			sb.WriteString(fmt.Sprintf("`#%d` **%s** — pity %d/%d\n",
				banner.ID, banner.Name, banner.CurrentPity, banner.MaxPity))
		}
	}

	if summary.Currency != nil {
		sb.WriteString(fmt.Sprintf("\n💎 %s currency, %s pull tokens",
			utils.FormatNumber(summary.Currency.Currency),
			utils.FormatNumber(summary.Currency.PullTokens)))
		if summary.Currency.Goal != nil {
			sb.WriteString(fmt.Sprintf(" (goal %s)", utils.FormatNumber(*summary.Currency.Goal)))
		}
	}

	now := time.Now()
	return discord.Embed{
		Title:       fmt.Sprintf("🎮 %s", summary.Game.Name),
		Description: sb.String(),
		Color:       config.EmbedDefaultColor,
		Timestamp:   &now,
	}
}
