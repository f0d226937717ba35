package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/pitytrack/trackbot"
	"github.com/ellavondegurechaff/pitytrack/trackbot/commands"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/repositories"
	"github.com/ellavondegurechaff/pitytrack/trackbot/handlers"
	"github.com/ellavondegurechaff/pitytrack/trackbot/logger"
	"github.com/ellavondegurechaff/pitytrack/trackbot/services"
	"github.com/ellavondegurechaff/pitytrack/trackbot/tracking"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting PityTrack Discord Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := trackbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	defer db.Close()

	b := trackbot.New(*cfg, version, commit)
	b.DB = db

	b.GameRepository = repositories.NewGameRepository(db.BunDB())
	b.BannerRepository = repositories.NewBannerRepository(db.BunDB())
	b.PullRepository = repositories.NewPullRepository(db.BunDB())
	b.SessionRepository = repositories.NewSessionRepository(db.BunDB())
	b.SettingsRepository = repositories.NewSettingsRepository(db.BunDB())
	b.CurrencyRepository = repositories.NewCurrencyRepository(db.BunDB())

	b.BannerService = services.NewBannerService(b.BannerRepository)
	b.GameService = services.NewGameService(b.GameRepository, b.BannerRepository, b.CurrencyRepository)
	b.PullService = services.NewPullService(b.PullRepository, b.BannerService)
	b.SettingsService = services.NewSettingsService(b.SettingsRepository)
	b.CurrencyService = services.NewCurrencyService(b.CurrencyRepository)
	b.Engine = tracking.NewEngine(b.SessionRepository)

	if res := b.SettingsService.Initialize(ctx); !res.Success {
		slog.Error("Failed to initialize settings",
			slog.String("code", res.Code),
			slog.String("error", res.Error))
		os.Exit(-1)
	}

	if res := b.Engine.Resume(ctx); res.Success && res.Data > 0 {
		logger.LogSystem("Resumed open sessions", slog.Int("count", res.Data))
	}

	h := handler.New()

	h.Command("/game", handlers.WrapWithLogging("game", commands.GameHandler(b)))
	h.Command("/banner", handlers.WrapWithLogging("banner", commands.BannerHandler(b)))
	h.Autocomplete("/banner", handlers.WrapAutocompleteWithLogging("banner", commands.BannerAutocompleteHandler(b)))
	h.Command("/pull", handlers.WrapWithLogging("pull", commands.PullHandler(b)))
	h.Autocomplete("/pull", handlers.WrapAutocompleteWithLogging("pull", commands.BannerAutocompleteHandler(b)))
	h.Command("/session", handlers.WrapWithLogging("session", commands.SessionHandler(b)))
	h.Command("/currency", handlers.WrapWithLogging("currency", commands.CurrencyHandler(b)))
	h.Command("/settings", handlers.WrapWithLogging("settings", commands.SettingsHandler(b)))
	h.Command("/version", commands.VersionHandler(b))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
