package commands

import (
	"context"
	"encoding/json"
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

var bannerNameOption = discord.ApplicationCommandOptionString{
	Name:         "banner",
	Description:  "Banner name",
	Required:     true,
	Autocomplete: true,
}

var Banner = discord.SlashCommandCreate{
	Name:        "banner",
	Description: "🎏 Manage the banners of this channel's game",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Create a banner for this channel's game",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Banner name",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "max_pity",
					Description: "Hard pity of the banner",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "current_pity",
					Description: "Starting pity, defaults to 0",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List this channel's banners",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "show",
			Description: "Show one banner",
			Options:     []discord.ApplicationCommandOption{bannerNameOption},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "pity",
			Description: "Set a banner's current pity",
			Options: []discord.ApplicationCommandOption{
				bannerNameOption,
				discord.ApplicationCommandOptionInt{
					Name:        "value",
					Description: "New pity value",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "maxpity",
			Description: "Set a banner's hard pity",
			Options: []discord.ApplicationCommandOption{
				bannerNameOption,
				discord.ApplicationCommandOptionInt{
					Name:        "value",
					Description: "New hard pity",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Set both pity values at once",
			Options: []discord.ApplicationCommandOption{
				bannerNameOption,
				discord.ApplicationCommandOptionInt{
					Name:        "pity",
					Description: "New pity value",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "max_pity",
					Description: "New hard pity",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "rename",
			Description: "Rename a banner",
			Options: []discord.ApplicationCommandOption{
				bannerNameOption,
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "New banner name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete",
			Description: "Delete a banner",
			Options:     []discord.ApplicationCommandOption{bannerNameOption},
		},
	},
}

func BannerHandler(b *trackbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		channelID := e.ChannelID().String()

		switch *data.SubCommandName {
		case "add":
			game := b.GameService.GetGameForChannel(ctx, channelID)
			if !game.Success {
				return utils.RespondFailure(e, game)
			}
			current := data.Int("current_pity")
			res := b.BannerService.CreateBanner(ctx, game.Data.ID, data.String("name"), current, data.Int("max_pity"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Created banner **%s** (%d/%d)",
				res.Data.Name, res.Data.CurrentPity, res.Data.MaxPity))

		case "list":
			game := b.GameService.GetGameForChannel(ctx, channelID)
			if !game.Success {
				return utils.RespondFailure(e, game)
			}
			res := b.BannerService.GetBanners(ctx, game.Data.ID)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			var sb strings.Builder
			for _, banner := range res.Data {
				sb.WriteString(fmt.Sprintf("**%s** — %s\n", banner.Name, pityBar(banner)))
			}
			now := time.Now()
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       fmt.Sprintf("🎏 %s Banners", game.Data.Name),
					Description: sb.String(),
					Color:       config.EmbedDefaultColor,
					Timestamp:   &now,
				}},
			})

		case "show":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			now := time.Now()
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title: fmt.Sprintf("🎏 %s", banner.Data.Name),
					Description: fmt.Sprintf("%s\nLast updated %s",
						pityBar(banner.Data),
						utils.FormatLocalTime(banner.Data.LastUpdated)),
					Color:     config.EmbedDefaultColor,
					Timestamp: &now,
				}},
			})

		case "pity":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			res := b.BannerService.UpdatePity(ctx, banner.Data.ID, data.Int("value"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** pity set to %d/%d",
				banner.Data.Name, data.Int("value"), banner.Data.MaxPity))

		case "maxpity":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			res := b.BannerService.UpdateMaxPity(ctx, banner.Data.ID, data.Int("value"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** hard pity set to %d",
				banner.Data.Name, data.Int("value")))

		case "set":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			res := b.BannerService.UpdatePityDetail(ctx, banner.Data.ID, data.Int("pity"), data.Int("max_pity"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("**%s** set to %d/%d",
				banner.Data.Name, data.Int("pity"), data.Int("max_pity")))

		case "rename":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			res := b.BannerService.RenameBanner(ctx, banner.Data.ID, data.String("name"))
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Renamed **%s** to **%s**",
				banner.Data.Name, data.String("name")))

		case "delete":
			banner := resolveBanner(ctx, b, channelID, data.String("banner"))
			if !banner.Success {
				return utils.RespondFailure(e, banner)
			}
			res := b.BannerService.DeleteBanner(ctx, banner.Data.ID)
			if !res.Success {
				return utils.RespondFailure(e, res)
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted **%s**", banner.Data.Name))
		}

		return utils.EH.CreateErrorEmbed(e, "Unknown subcommand")
	}
}

// BannerAutocompleteHandler suggests banner names of the channel's game as
// the user types.
func BannerAutocompleteHandler(b *trackbot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.SearchTimeout)
		defer cancel()

		game := b.GameService.GetGameForChannel(ctx, e.ChannelID().String())
		if !game.Success {
			return e.AutocompleteResult(nil)
		}

		query := ""
		if focused := e.Data.Focused(); focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err == nil {
				query = s
			}
		}
		var banners []*models.Banner
		if strings.TrimSpace(query) == "" {
			if res := b.BannerService.GetBanners(ctx, game.Data.ID); res.Success {
				banners = res.Data
			}
		} else {
			if res := b.BannerService.SearchBanners(ctx, game.Data.ID, query); res.Success {
				banners = res.Data
			}
		}

		choices := make([]discord.AutocompleteChoice, 0, config.MaxSearchResults)
		for _, banner := range banners {
			if len(choices) == config.MaxSearchResults {
				break
			}
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  banner.Name,
				Value: banner.Name,
			})
		}
		return e.AutocompleteResult(choices)
	}
}

func pityBar(banner *models.Banner) string {
	const barLength = 10

	progress := 0.0
	if banner.MaxPity > 0 {
		progress = float64(banner.CurrentPity) / float64(banner.MaxPity)
	}
	if progress > 1.0 {
		progress = 1.0
	}
	filled := int(progress * float64(barLength))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < barLength; i++ {
		if i < filled {
			bar.WriteString("■")
		} else {
			bar.WriteString("□")
		}
	}
	bar.WriteString(fmt.Sprintf("] %d/%d", banner.CurrentPity, banner.MaxPity))
	return bar.String()
}
