package services

import (
	"context"
	"testing"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

type fakeGameRepo struct {
	games  map[int64]*models.Game
	nextID int64
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[int64]*models.Game)}
}

func (f *fakeGameRepo) Add(_ context.Context, name, channelID string) results.Result[*models.Game] {
	for _, game := range f.games {
		if game.ChannelID == channelID {
			return results.Fail[*models.Game]("GAME_ALREADY_EXISTS", "A game is already registered for this channel", "")
		}
	}
	f.nextID++
	game := &models.Game{ID: f.nextID, Name: name, ChannelID: channelID, CreatedAt: time.Now().UTC()}
	f.games[game.ID] = game
	return results.Ok("GAME_ADDED", "Game registered", game)
}

func (f *fakeGameRepo) GetByChannelID(_ context.Context, channelID string) results.Result[*models.Game] {
	for _, game := range f.games {
		if game.ChannelID == channelID {
			return results.Ok("GAME_FETCHED", "Game found", game)
		}
	}
	return results.Fail[*models.Game]("GAME_NOT_FOUND", "No game registered for this channel", "")
}

func (f *fakeGameRepo) Get(_ context.Context, id int64) results.Result[*models.Game] {
	game, ok := f.games[id]
	if !ok {
		return results.Fail[*models.Game]("GAME_NOT_FOUND", "Game does not exist", "")
	}
	return results.Ok("GAME_FETCHED", "Game found", game)
}

func (f *fakeGameRepo) List(_ context.Context) results.Result[[]*models.Game] {
	if len(f.games) == 0 {
		return results.Fail[[]*models.Game]("NO_GAMES_FOUND", "No registered games", "")
	}
	var games []*models.Game
	for _, game := range f.games {
		games = append(games, game)
	}
	return results.Ok("GAME_LIST_RETRIEVED", "Games listed", games)
}

func (f *fakeGameRepo) Rename(_ context.Context, id int64, newName string) results.Result[struct{}] {
	game, ok := f.games[id]
	if !ok {
		return results.Fail[struct{}]("GAME_NOT_FOUND", "Game does not exist", "")
	}
	game.Name = newName
	return results.OkMsg[struct{}]("GAME_RENAMED", "Game renamed")
}

func (f *fakeGameRepo) Delete(_ context.Context, id int64) results.Result[struct{}] {
	if _, ok := f.games[id]; !ok {
		return results.Fail[struct{}]("GAME_NOT_FOUND", "Game does not exist", "")
	}
	delete(f.games, id)
	return results.OkMsg[struct{}]("GAME_DELETED", "Game deleted")
}

type fakeCurrencyRepo struct {
	byGame map[int64]*models.GameCurrency
}

func newFakeCurrencyRepo() *fakeCurrencyRepo {
	return &fakeCurrencyRepo{byGame: make(map[int64]*models.GameCurrency)}
}

func (f *fakeCurrencyRepo) Install(_ context.Context, gameID, currency, pullTokens int64) results.Result[*models.GameCurrency] {
	if _, ok := f.byGame[gameID]; ok {
		return results.Fail[*models.GameCurrency]("CURRENCY_ALREADY_INSTALLED", "Currency tracking is already installed for this game", "")
	}
	gc := &models.GameCurrency{GameID: gameID, Currency: currency, PullTokens: pullTokens}
	f.byGame[gameID] = gc
	return results.Ok("CURRENCY_INSTALLED", "Currency tracking installed", gc)
}

func (f *fakeCurrencyRepo) GetByGame(_ context.Context, gameID int64) results.Result[*models.GameCurrency] {
	gc, ok := f.byGame[gameID]
	if !ok {
		return results.Fail[*models.GameCurrency]("NO_CURRENCY_FOUND", "Currency tracking is not installed for this game", "")
	}
	return results.Ok("CURRENCY_RETRIEVED", "Currency info fetched", gc)
}

func (f *fakeCurrencyRepo) SetGoal(_ context.Context, gameID, goal int64) results.Result[struct{}] {
	gc, ok := f.byGame[gameID]
	if !ok {
		return results.Fail[struct{}]("NO_CURRENCY_FOUND", "Currency tracking is not installed for this game", "")
	}
	gc.Goal = &goal
	return results.OkMsg[struct{}]("CURRENCY_UPDATED", "Currency updated")
}

func (f *fakeCurrencyRepo) UnsetGoal(_ context.Context, gameID int64) results.Result[struct{}] {
	gc, ok := f.byGame[gameID]
	if !ok {
		return results.Fail[struct{}]("NO_CURRENCY_FOUND", "Currency tracking is not installed for this game", "")
	}
	gc.Goal = nil
	return results.OkMsg[struct{}]("CURRENCY_UPDATED", "Currency updated")
}

func (f *fakeCurrencyRepo) AddAmount(_ context.Context, gameID, delta int64, _ string) results.Result[struct{}] {
	gc, ok := f.byGame[gameID]
	if !ok {
		return results.Fail[struct{}]("NO_CURRENCY_FOUND", "Currency tracking is not installed for this game", "")
	}
	gc.Currency += delta
	return results.OkMsg[struct{}]("CURRENCY_UPDATED", "Currency updated")
}

func (f *fakeCurrencyRepo) AddTokens(_ context.Context, gameID, delta int64, _ string) results.Result[struct{}] {
	gc, ok := f.byGame[gameID]
	if !ok {
		return results.Fail[struct{}]("NO_CURRENCY_FOUND", "Currency tracking is not installed for this game", "")
	}
	gc.PullTokens += delta
	return results.OkMsg[struct{}]("CURRENCY_UPDATED", "Currency updated")
}

func (f *fakeCurrencyRepo) GetLogs(_ context.Context, gameID int64, _ int) results.Result[[]*models.CurrencyLog] {
	return results.Fail[[]*models.CurrencyLog]("NO_CURRENCY_LOGS_FOUND", "No currency actions recorded", "")
}

func gameFixture() (*GameService, *fakeGameRepo, *fakeBannerRepo, *fakeCurrencyRepo) {
	games := newFakeGameRepo()
	banners := newFakeBannerRepo()
	currency := newFakeCurrencyRepo()
	return NewGameService(games, banners, currency), games, banners, currency
}

func TestCreateGameValidation(t *testing.T) {
	s, _, _, _ := gameFixture()
	ctx := context.Background()

	if res := s.CreateGame(ctx, "  ", "chan"); res.Success || res.Code != "EMPTY_GAME_NAME" {
		t.Errorf("blank name: success=%v code=%s", res.Success, res.Code)
	}
	if res := s.CreateGame(ctx, "Genshin", ""); res.Success || res.Code != "EMPTY_CHANNEL_ID" {
		t.Errorf("blank channel: success=%v code=%s", res.Success, res.Code)
	}

	created := s.CreateGame(ctx, "Genshin", "chan")
	if !created.Success {
		t.Fatalf("CreateGame failed: %s", created.Code)
	}
	if res := s.CreateGame(ctx, "Other", "chan"); res.Success || res.Code != "GAME_ALREADY_EXISTS" {
		t.Errorf("channel reuse: success=%v code=%s", res.Success, res.Code)
	}
}

func TestGameSummary(t *testing.T) {
	s, _, banners, currency := gameFixture()
	ctx := context.Background()

	created := s.CreateGame(ctx, "Genshin", "chan")
	gameID := created.Data.ID
	banners.Add(ctx, gameID, "Limited", 10, 90)
	currency.Install(ctx, gameID, 16000, 2)

	res := s.Summary(ctx, gameID)
	if !res.Success {
		t.Fatalf("Summary failed: %s", res.Code)
	}
	if res.Data.Game.Name != "Genshin" {
		t.Errorf("game = %q", res.Data.Game.Name)
	}
	if len(res.Data.Banners) != 1 {
		t.Errorf("banners = %d, want 1", len(res.Data.Banners))
	}
	if res.Data.Currency == nil || res.Data.Currency.Currency != 16000 {
		t.Errorf("currency slot wrong: %+v", res.Data.Currency)
	}
}

func TestGameSummaryTolerantOfEmptySlots(t *testing.T) {
	s, _, _, _ := gameFixture()
	ctx := context.Background()

	created := s.CreateGame(ctx, "Bare", "chan")
	res := s.Summary(ctx, created.Data.ID)
	if !res.Success {
		t.Fatalf("Summary failed: %s", res.Code)
	}
	if len(res.Data.Banners) != 0 || res.Data.Currency != nil {
		t.Errorf("expected empty slots: %+v", res.Data)
	}

	if missing := s.Summary(ctx, 999); missing.Success || missing.Code != "GAME_NOT_FOUND" {
		t.Errorf("unknown game: success=%v code=%s", missing.Success, missing.Code)
	}
}
