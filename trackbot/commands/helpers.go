package commands

import (
	"context"
	"strings"

	"github.com/ellavondegurechaff/pitytrack/trackbot"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

// resolveBanner maps a user-typed banner name to a banner of the channel's
// game. Exact name match wins; otherwise the best fuzzy match is taken.
func resolveBanner(ctx context.Context, b *trackbot.Bot, channelID, name string) results.Result[*models.Banner] {
	game := b.GameService.GetGameForChannel(ctx, channelID)
	if !game.Success {
		return results.Recode[*models.Banner](game.Code, game)
	}

	listed := b.BannerService.GetBanners(ctx, game.Data.ID)
	if !listed.Success {
		return results.Recode[*models.Banner](listed.Code, listed)
	}
	for _, banner := range listed.Data {
		if strings.EqualFold(banner.Name, name) {
			return results.Ok("BANNER_FETCHED", "Banner found", banner)
		}
	}

	found := b.BannerService.SearchBanners(ctx, game.Data.ID, name)
	if !found.Success {
		return results.Fail[*models.Banner]("BANNER_NOT_FOUND", "No banner matches that name", "")
	}
	return results.Ok("BANNER_FETCHED", "Banner found", found.Data[0])
}
