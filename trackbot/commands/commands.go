package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	Game,
	Banner,
	Pull,
	Session,
	Currency,
	Settings,
	Version,
}
