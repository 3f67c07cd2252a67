package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"fabr-admin/internal/api"
	"fabr-admin/internal/catalog"
	"fabr-admin/internal/config"
	"fabr-admin/internal/domain"
	"fabr-admin/internal/repository"
)

type fakeLeague struct {
	teams   map[string][]domain.Team
	players map[string][]domain.Player
	err     error

	added        []domain.Team
	addedPlayers []domain.Player
	articles     []domain.Article
	started      map[string]domain.RolloverChanges
	startResult  domain.RolloverResult
	startErr     error
	uploads      []string

	updatedPlayers []domain.Player
	compared       json.RawMessage
	processedGames json.RawMessage
}

func newFakeLeague() *fakeLeague {
	return &fakeLeague{
		teams:   map[string][]domain.Team{},
		players: map[string][]domain.Player{},
		started: map[string]domain.RolloverChanges{},
	}
}

func (f *fakeLeague) GetTeams(_ context.Context, season string) ([]domain.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Team{}, f.teams[season]...), nil
}

func (f *fakeLeague) AddTeam(_ context.Context, team domain.Team) (*domain.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, team)
	team.ID = len(f.added)
	return &team, nil
}

func (f *fakeLeague) UpdateTeam(_ context.Context, team domain.Team) (*domain.Team, error) {
	return &team, f.err
}

func (f *fakeLeague) DeleteTeam(context.Context, int) error { return f.err }

func (f *fakeLeague) CompareTeams(context.Context, int, int, string) (json.RawMessage, error) {
	if f.compared != nil {
		return f.compared, f.err
	}
	return json.RawMessage(`{}`), f.err
}

func (f *fakeLeague) GetPlayers(_ context.Context, season string) ([]domain.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Player{}, f.players[season]...), nil
}

func (f *fakeLeague) GetPlayerSeason(_ context.Context, id int, season string) (*domain.Player, error) {
	for _, p := range f.players[season] {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, f.err
}

func (f *fakeLeague) AddPlayer(_ context.Context, p domain.Player) (*domain.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.addedPlayers = append(f.addedPlayers, p)
	return &p, nil
}

func (f *fakeLeague) UpdatePlayer(_ context.Context, p domain.Player) (*domain.Player, error) {
	f.updatedPlayers = append(f.updatedPlayers, p)
	return &p, f.err
}

func (f *fakeLeague) DeletePlayer(context.Context, int) error { return f.err }

func (f *fakeLeague) GetArticles(context.Context) ([]domain.Article, error) {
	return f.articles, f.err
}

func (f *fakeLeague) CreateArticle(_ context.Context, a domain.Article) (*domain.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	a.ID = len(f.articles) + 1
	f.articles = append(f.articles, a)
	return &a, nil
}

func (f *fakeLeague) UpdateArticle(_ context.Context, id int, a domain.Article) (*domain.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	a.ID = id
	f.articles = append(f.articles, a)
	return &a, nil
}

func (f *fakeLeague) DeleteArticle(context.Context, int) error { return f.err }

func (f *fakeLeague) StartSeason(_ context.Context, year string, changes domain.RolloverChanges) (*domain.RolloverResult, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started[year] = changes
	res := f.startResult
	return &res, nil
}

func (f *fakeLeague) ImportTeams(_ context.Context, file api.Upload) (json.RawMessage, error) {
	f.uploads = append(f.uploads, "teams:"+file.Filename)
	return json.RawMessage(`{"ok":true}`), f.err
}

func (f *fakeLeague) ImportPlayers(_ context.Context, file api.Upload) (json.RawMessage, error) {
	f.uploads = append(f.uploads, "players:"+file.Filename)
	return json.RawMessage(`{"ok":true}`), f.err
}

func (f *fakeLeague) UpdateStatistics(_ context.Context, file api.Upload, game api.GameSheet) (json.RawMessage, error) {
	f.uploads = append(f.uploads, "stats:"+game.GameID)
	return json.RawMessage(`{"ok":true}`), f.err
}

func (f *fakeLeague) ReprocessGame(_ context.Context, file api.Upload, game api.GameSheet, force bool) (json.RawMessage, error) {
	f.uploads = append(f.uploads, "reprocess:"+game.GameID)
	return json.RawMessage(`{"ok":true}`), f.err
}

func (f *fakeLeague) GetProcessedGames(context.Context) (json.RawMessage, error) {
	return f.processedGames, f.err
}

type memDrafts struct {
	drafts map[domain.DraftKey]domain.Draft
	saves  int
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: map[domain.DraftKey]domain.Draft{}}
}

func (m *memDrafts) Get(_ context.Context, key domain.DraftKey) (*domain.Draft, error) {
	d, ok := m.drafts[key]
	if !ok {
		return &domain.Draft{Key: key, TeamChanges: []domain.TeamChange{}, Transfers: []domain.Transfer{}, TeamNames: map[int]string{}}, nil
	}
	out := d
	out.TeamChanges = append([]domain.TeamChange{}, d.TeamChanges...)
	out.Transfers = append([]domain.Transfer{}, d.Transfers...)
	out.TeamNames = map[int]string{}
	for k, v := range d.TeamNames {
		out.TeamNames[k] = v
	}
	return &out, nil
}

func (m *memDrafts) Save(_ context.Context, d *domain.Draft, now time.Time) error {
	m.saves++
	d.UpdatedAt = now
	m.drafts[d.Key] = *d
	return nil
}

func (m *memDrafts) Delete(_ context.Context, key domain.DraftKey) error {
	delete(m.drafts, key)
	return nil
}

type memRollovers struct {
	list []domain.Rollover
}

func (m *memRollovers) Create(_ context.Context, ro domain.Rollover) error {
	m.list = append([]domain.Rollover{ro}, m.list...)
	return nil
}

func (m *memRollovers) List(_ context.Context, limit int) ([]domain.Rollover, error) {
	if len(m.list) > limit {
		return m.list[:limit], nil
	}
	return m.list, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func (m *memSessions) Create(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

func (m *memSessions) has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	return ok
}

type recordedEvent struct {
	subject string
	event   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(_ context.Context, subject string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{subject, event})
}

func (p *fakePublisher) Close() {}

func testConfig() *config.Config {
	return &config.Config{
		AdminUsername: "fabrnetwork",
		AdminPassword: "s3nha",
		DefaultSeason: "2025",
		SessionTTL:    24 * time.Hour,
	}
}

func testCatalog() *catalog.Catalog {
	cat, err := catalog.Load()
	if err != nil {
		panic(err)
	}
	return cat
}
