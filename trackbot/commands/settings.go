package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/pitytrack/trackbot"
	"github.com/ellavondegurechaff/pitytrack/trackbot/config"
	"github.com/ellavondegurechaff/pitytrack/trackbot/utils"
)

var Settings = discord.SlashCommandCreate{
	Name:        "settings",
	Description: "⚙️ Bot settings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "Show current settings",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "pagination",
			Description: "Set the list page size",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "size",
					Description: "Entries per page, 1 to 25",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "features",
			Description: "Set the feature flags JSON",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "flags",
					Description: "Feature flags as JSON",
					Required:    true,
				},
			},
		},
	},
}

func SettingsHandler(b *trackbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()

		switch *data.SubCommandName {
		case "view":
			res := b.SettingsService.GetAll(ctx)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			description := fmt.Sprintf("Page size: **%d**\nFeatures: `%s`",
				res.Data.PaginationSize, res.Data.FeaturesEnabled)
			if meta := b.SettingsService.SchemaMeta(ctx); meta.Success {
				description += fmt.Sprintf("\nSchema: `%s`", meta.Data.Version)
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "⚙️ Settings",
					Description: description,
					Color:       config.EmbedDefaultColor,
				}},
			})

		case "pagination":
			res := b.SettingsService.UpdatePagination(ctx, data.Int("size"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Page size set to %d", data.Int("size")))

		case "features":
			res := b.SettingsService.UpdateFeatures(ctx, data.String("flags"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, "Feature flags updated")
		}

		return utils.EH.CreateErrorEmbed(e, "Unknown subcommand")
	}
}
