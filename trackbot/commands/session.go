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
	"github.com/ellavondegurechaff/pitytrack/trackbot/tracking"
	"github.com/ellavondegurechaff/pitytrack/trackbot/utils"
)

var Session = discord.SlashCommandCreate{
	Name:        "session",
	Description: "⏱️ Track play sessions with breaks",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "start",
			Description: "Start a session in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Session name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "break",
			Description: "Start a break in the running session",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "resume",
			Description: "End the current break",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "end",
			Description: "End the running session and show the totals",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "current",
			Description: "Show the running session",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "browse",
			Description: "Browse all recorded sessions",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete",
			Description: "Delete a recorded session and its breaks",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "Session id",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "deletebreak",
			Description: "Delete a recorded break",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "Break id",
					Required:    true,
				},
			},
		},
	},
}

func SessionHandler(b *trackbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		scope := e.ChannelID().String()

		switch *data.SubCommandName {
		case "start":
			res := b.Engine.StartSession(ctx, scope, data.String("name"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Started session **%s** at %s",
				res.Data.Name, utils.FormatLocalTime(res.Data.StartTime)))

		case "break":
			res := b.Engine.AddBreak(ctx, scope)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, "Break started, timer paused")

		case "resume":
			res := b.Engine.EndBreak(ctx, scope)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Break over after %s, timer running",
				utils.FormatDuration(res.Data.DurationSeconds)))

		case "end":
			res := b.Engine.EndSession(ctx, scope)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{reportEmbed("⏱️ Session Ended", res.Data)},
			})

		case "current":
			res := b.Engine.Current(ctx, scope)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{reportEmbed("⏱️ Session Running", res.Data)},
			})

		case "browse":
			res := b.Engine.Browse(ctx)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}

			reports := res.Data
			totalPages := int(math.Ceil(float64(len(reports)) / float64(config.SessionsPerPage)))

			return b.Paginator.Create(e.Respond, paginator.Pages{
				ID:      e.ID().String(),
				Creator: e.User().ID,
				PageFunc: func(page int, embed *discord.EmbedBuilder) {
					startIdx := page * config.SessionsPerPage
					endIdx := min(startIdx+config.SessionsPerPage, len(reports))

					var sb strings.Builder
					for _, report := range reports[startIdx:endIdx] {
						state := "ended"
						if report.Session.EndTime == nil {
							state = "running"
						}
						sb.WriteString(fmt.Sprintf("`#%d` **%s** (%s)\n└ total %s, breaks %s, net **%s**\n",
							report.Session.ID, report.Session.Name, state,
							report.Total, report.Break, report.Net))
					}

					embed.
						SetTitle("⏱️ Sessions").
						SetDescription(sb.String()).
						SetColor(config.EmbedDefaultColor).
						SetFooter(fmt.Sprintf("Page %d/%d • Total Sessions: %d", page+1, totalPages, len(reports)), "")
				},
				Pages:      totalPages,
				ExpireMode: paginator.ExpireModeAfterLastUsage,
			}, false)

		case "delete":
			res := b.Engine.DeleteSession(ctx, int64(data.Int("id")))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted session `#%d`", data.Int("id")))

		case "deletebreak":
			res := b.Engine.DeleteBreak(ctx, int64(data.Int("id")))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted break `#%d`", data.Int("id")))
		}

		return utils.EH.CreateErrorEmbed(e, "Unknown subcommand")
	}
}

func reportEmbed(title string, report *tracking.Report) discord.Embed {
	description := fmt.Sprintf("**%s**\nStarted %s\n\nTotal: `%s`\nBreaks: `%s`\nNet: **`%s`**",
		report.Session.Name,
		utils.FormatLocalTime(report.Session.StartTime),
		report.Total,
		report.Break,
		report.Net,
	)
	return discord.Embed{
		Title:       title,
		Description: description,
		Color:       config.SuccessColor,
	}
}
