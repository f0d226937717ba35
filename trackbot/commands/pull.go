package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/pitytrack/trackbot"
	"github.com/ellavondegurechaff/pitytrack/trackbot/config"
	"github.com/ellavondegurechaff/pitytrack/trackbot/utils"
)

var Pull = discord.SlashCommandCreate{
	Name:        "pull",
	Description: "✨ Record and review gacha pulls",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Record a pull and set the banner's pity to its value",
			Options: []discord.ApplicationCommandOption{
				bannerNameOption,
				discord.ApplicationCommandOptionString{
					Name:        "entry",
					Description: "What was pulled",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "pity",
					Description: "Pity the pull landed on",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "notes",
					Description: "Optional notes",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "history",
			Description: "Browse a banner's pull history",
			Options:     []discord.ApplicationCommandOption{bannerNameOption},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "edit",
			Description: "Correct a recorded pull, banner pity is untouched",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "Pull entry id",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "entry",
					Description: "Corrected entry name",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "pity",
					Description: "Corrected pity",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "notes",
					Description: "Corrected notes",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete",
			Description: "Delete a recorded pull",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "Pull entry id",
					Required:    true,
				},
			},
		},
	},
}

func PullHandler(b *trackbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		channelID := e.ChannelID().String()

		switch *data.SubCommandName {
		case "add":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			res := b.PullService.AddPull(ctx, banner.Data.ID, data.String("entry"), data.Int("pity"), data.String("notes"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Recorded **%s** at pity %d, **%s** is now at %d/%d",
				res.Data.EntryName, res.Data.Pity, banner.Data.Name, res.Data.Pity, banner.Data.MaxPity))

		case "history":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			res := b.PullService.GetBannerPulls(ctx, banner.Data.ID)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}

			pulls := res.Data
			totalPages := int(math.Ceil(float64(len(pulls)) / float64(config.PullsPerPage)))

			return b.Paginator.Create(e.Respond, paginator.Pages{
				ID:      e.ID().String(),
				Creator: e.User().ID,
				PageFunc: func(page int, embed *discord.EmbedBuilder) {
					startIdx := page * config.PullsPerPage
					endIdx := min(startIdx+config.PullsPerPage, len(pulls))

					var sb strings.Builder
					for _, pull := range pulls[startIdx:endIdx] {
						sb.WriteString(fmt.Sprintf("`#%d` **%s** at pity %d — %s\n",
							pull.ID, pull.EntryName, pull.Pity, utils.FormatLocalTime(pull.Timestamp)))
						if pull.Notes != "" {
							sb.WriteString(fmt.Sprintf("└ %s\n", pull.Notes))
						}
					}

					embed.
						SetTitle(fmt.Sprintf("✨ %s Pull History", banner.Data.Name)).
						SetDescription(sb.String()).
						SetColor(config.EmbedDefaultColor).
						SetFooter(fmt.Sprintf("Page %d/%d • Total Pulls: %d", page+1, totalPages, len(pulls)), "")
				},
				Pages:      totalPages,
				ExpireMode: paginator.ExpireModeAfterLastUsage,
			}, false)

		case "edit":
			res := b.PullService.EditPull(ctx, int64(data.Int("id")), data.String("entry"), data.Int("pity"), data.String("notes"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Edited pull `#%d`", data.Int("id")))

		case "delete":
			res := b.PullService.DeletePull(ctx, int64(data.Int("id")))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted pull `#%d`", data.Int("id")))
		}

		return utils.EH.CreateErrorEmbed(e, "Unknown subcommand")
	}
}
