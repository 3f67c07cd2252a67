package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fabr-admin/internal/domain"
	"fabr-admin/internal/events"
	"fabr-admin/internal/metrics"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var key2026 = domain.DraftKey{CurrentSeason: "2025", TargetSeason: "2026"}

type seasonFixture struct {
	league    *fakeLeague
	drafts    *memDrafts
	rollovers *memRollovers
	publisher *fakePublisher
	clock     *clockwork.FakeClock
	svc       *SeasonService
}

func newSeasonFixture() *seasonFixture {
	f := &seasonFixture{
		league:    newFakeLeague(),
		drafts:    newMemDrafts(),
		rollovers: &memRollovers{},
		publisher: &fakePublisher{},
		clock:     clockwork.NewFakeClockAt(time.Date(2025, 12, 1, 15, 0, 0, 0, time.UTC)),
	}
	f.league.teams["2025"] = []domain.Team{
		{ID: 1, Name: "Leões", Abbreviation: "LEO", Color: "#ff0000", HeadCoach: "Ana"},
		{ID: 2, Name: "Touros", Abbreviation: "TOU", Color: "#000000"},
	}
	f.league.players["2025"] = []domain.Player{
		{ID: 10, Name: "Caio", TeamID: 1, Position: "QB"},
		{ID: 11, Name: "Rui", TeamID: 2, Position: "WR"},
	}
	f.svc = NewSeasonService(f.league, f.drafts, f.rollovers, testCatalog(), f.publisher, metrics.New(), f.clock, zerolog.Nop())
	return f
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name string
		key  domain.DraftKey
		ok   bool
	}{
		{"next year", domain.DraftKey{CurrentSeason: "2025", TargetSeason: "2026"}, true},
		{"skip a year", domain.DraftKey{CurrentSeason: "2025", TargetSeason: "2027"}, true},
		{"same year", domain.DraftKey{CurrentSeason: "2025", TargetSeason: "2025"}, false},
		{"backwards", domain.DraftKey{CurrentSeason: "2025", TargetSeason: "2024"}, false},
		{"not a year", domain.DraftKey{CurrentSeason: "25", TargetSeason: "2026"}, false},
		{"empty target", domain.DraftKey{CurrentSeason: "2025"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSeason) {
				t.Errorf("err = %v, want ErrInvalidSeason", err)
			}
		})
	}
}

func TestLoadSeason(t *testing.T) {
	f := newSeasonFixture()
	data, err := f.svc.LoadSeason(context.Background(), "2025")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Teams) != 2 || len(data.Players) != 2 {
		t.Errorf("data = %+v", data)
	}

	f.league.err = errors.New("connection refused")
	_, err = f.svc.LoadSeason(context.Background(), "2025")
	var up *UpstreamError
	if !errors.As(err, &up) || up.Message != "Erro ao carregar dados. Verifique se o servidor backend está rodando." {
		t.Errorf("err = %v", err)
	}
}

func TestAddTeamChangeKeepsOnlyDifferences(t *testing.T) {
	f := newSeasonFixture()
	ctx := context.Background()

	draft, err := f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{
		TeamID:    1,
		Name:      "Leões",   // unchanged
		Color:     "#00ff00", // changed
		HeadCoach: "  ",      // blank
		President: "Beto",    // new
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.TeamChange{{TeamID: 1, Color: "#00ff00", President: "Beto"}}
	if diff := cmp.Diff(want, draft.TeamChanges); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
	if draft.TeamNames[1] != "Leões" {
		t.Errorf("team names = %v", draft.TeamNames)
	}
}

func TestAddTeamChangeWithoutDifferences(t *testing.T) {
	f := newSeasonFixture()
	_, err := f.svc.AddTeamChange(context.Background(), key2026, domain.TeamChange{TeamID: 1, Name: "Leões", Color: "#ff0000"})
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("err = %v, want ErrNoChanges", err)
	}
	if f.drafts.saves != 0 {
		t.Errorf("draft saved %d times", f.drafts.saves)
	}
}

func TestAddTeamChangeUnknownTeam(t *testing.T) {
	f := newSeasonFixture()
	_, err := f.svc.AddTeamChange(context.Background(), key2026, domain.TeamChange{TeamID: 99, Name: "X"})
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestAddTeamChangeMergesSameTeam(t *testing.T) {
	f := newSeasonFixture()
	ctx := context.Background()

	if _, err := f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 1, Color: "#00ff00", President: "Beto"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 2, Name: "Touros FC"}); err != nil {
		t.Fatal(err)
	}
	draft, err := f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 1, Color: "#0000ff", Logo: "leo.png"})
	if err != nil {
		t.Fatal(err)
	}

	want := []domain.TeamChange{
		{TeamID: 1, Color: "#0000ff", President: "Beto", Logo: "leo.png"},
		{TeamID: 2, Name: "Touros FC"},
	}
	if diff := cmp.Diff(want, draft.TeamChanges); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
}

func TestRemoveTeamChange(t *testing.T) {
	f := newSeasonFixture()
	ctx := context.Background()
	f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 1, Color: "#00ff00"})
	f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 2, Color: "#ffffff"})

	if _, err := f.svc.RemoveTeamChange(ctx, key2026, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := f.svc.RemoveTeamChange(ctx, key2026, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}

	draft, err := f.svc.RemoveTeamChange(ctx, key2026, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(draft.TeamChanges) != 1 || draft.TeamChanges[0].TeamID != 2 {
		t.Errorf("changes = %+v", draft.TeamChanges)
	}
}

func TestAddTransfer(t *testing.T) {
	f := newSeasonFixture()
	ctx := context.Background()

	num := 12
	draft, err := f.svc.AddTransfer(ctx, key2026, domain.TransferInput{
		PlayerID: 10, NewTeamID: 2, NewPosition: "RB", NewSector: "Ataque", NewNumber: &num,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.Transfer{{
		PlayerID:       10,
		PlayerName:     "Caio",
		OriginTeamID:   1,
		OriginTeamName: "Leões",
		NewTeamID:      2,
		NewTeamName:    "Touros",
		NewPosition:    "RB",
		NewSector:      "Ataque",
		NewNumber:      &num,
	}}
	if diff := cmp.Diff(want, draft.Transfers); diff != "" {
		t.Errorf("transfers (-want +got):\n%s", diff)
	}
}

func TestAddTransferUsesPendingTeamName(t *testing.T) {
	f := newSeasonFixture()
	ctx := context.Background()

	if _, err := f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 2, Name: "Touros FC"}); err != nil {
		t.Fatal(err)
	}
	draft, err := f.svc.AddTransfer(ctx, key2026, domain.TransferInput{PlayerID: 10, NewTeamID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := draft.Transfers[0].NewTeamName; got != "Touros FC" {
		t.Errorf("destination name = %q", got)
	}
}

func TestAddTransferReplacesSamePlayer(t *testing.T) {
	f := newSeasonFixture()
	f.league.teams["2025"] = append(f.league.teams["2025"], domain.Team{ID: 3, Name: "Águias"})
	ctx := context.Background()

	f.svc.AddTransfer(ctx, key2026, domain.TransferInput{PlayerID: 10, NewTeamID: 2})
	f.svc.AddTransfer(ctx, key2026, domain.TransferInput{PlayerID: 11, NewTeamID: 1})
	draft, err := f.svc.AddTransfer(ctx, key2026, domain.TransferInput{PlayerID: 10, NewTeamID: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(draft.Transfers) != 2 {
		t.Fatalf("transfers = %+v", draft.Transfers)
	}
	if draft.Transfers[0].PlayerID != 10 || draft.Transfers[0].NewTeamID != 3 {
		t.Errorf("replacement not in place: %+v", draft.Transfers[0])
	}
}

func TestAddTransferRejections(t *testing.T) {
	tests := []struct {
		name string
		in   domain.TransferInput
		want error
	}{
		{"same team", domain.TransferInput{PlayerID: 10, NewTeamID: 1}, ErrSameTeam},
		{"unknown player", domain.TransferInput{PlayerID: 99, NewTeamID: 1}, ErrPlayerNotFound},
		{"unknown team", domain.TransferInput{PlayerID: 10, NewTeamID: 99}, ErrTeamNotFound},
		{"bad sector", domain.TransferInput{PlayerID: 10, NewTeamID: 2, NewSector: "Goleiro"}, ErrValidation},
		{"no player", domain.TransferInput{NewTeamID: 2}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSeasonFixture()
			_, err := f.svc.AddTransfer(context.Background(), key2026, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRemoveTransfer(t *testing.T) {
	f := newSeasonFixture()
	ctx := context.Background()
	f.svc.AddTransfer(ctx, key2026, domain.TransferInput{PlayerID: 10, NewTeamID: 2})

	if _, err := f.svc.RemoveTransfer(ctx, key2026, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v", err)
	}
	draft, err := f.svc.RemoveTransfer(ctx, key2026, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(draft.Transfers) != 0 {
		t.Errorf("transfers = %+v", draft.Transfers)
	}
}

func TestSubmitSendsBatchAndClearsDraft(t *testing.T) {
	f := newSeasonFixture()
	f.league.startResult = domain.RolloverResult{Teams: 2, Players: 2}
	ctx := context.Background()

	f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 2, Name: "Touros FC"})
	f.svc.AddTransfer(ctx, key2026, domain.TransferInput{PlayerID: 10, NewTeamID: 2})

	res, err := f.svc.Submit(ctx, key2026)
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "Temporada 2026 iniciada com sucesso! 2 times e 2 jogadores criados." {
		t.Errorf("message = %q", res.Message)
	}

	sent := f.league.started["2026"]
	if len(sent.TeamChanges) != 1 || len(sent.Transfers) != 1 || sent.Transfers[0].NewTeamName != "Touros FC" {
		t.Errorf("batch = %+v", sent)
	}

	draft, _ := f.svc.GetDraft(ctx, key2026)
	if len(draft.TeamChanges) != 0 || len(draft.Transfers) != 0 {
		t.Errorf("draft not cleared: %+v", draft)
	}

	history, _ := f.svc.History(ctx)
	if len(history) != 1 || history[0].TeamsCreated != 2 || history[0].Transfers != 1 || !history[0].SubmittedAt.Equal(f.clock.Now()) {
		t.Errorf("history = %+v", history)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].subject != events.SubjectSeasonStarted {
		t.Fatalf("events = %+v", f.publisher.events)
	}
	ev := f.publisher.events[0].event.(events.SeasonStarted)
	if ev.TargetSeason != "2026" || ev.PlayersCreated != 2 {
		t.Errorf("event = %+v", ev)
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	f := newSeasonFixture()
	f.league.startErr = errors.New("status 500")
	ctx := context.Background()
	f.svc.AddTeamChange(ctx, key2026, domain.TeamChange{TeamID: 1, Color: "#00ff00"})

	_, err := f.svc.Submit(ctx, key2026)
	var up *UpstreamError
	if !errors.As(err, &up) || up.Message != "Falha ao iniciar nova temporada" {
		t.Fatalf("err = %v", err)
	}

	draft, _ := f.svc.GetDraft(ctx, key2026)
	if len(draft.TeamChanges) != 1 {
		t.Errorf("draft lost: %+v", draft)
	}
	if len(f.rollovers.list) != 0 || len(f.publisher.events) != 0 {
		t.Error("failed rollover was recorded")
	}
}

func TestSubmitEmptyDraft(t *testing.T) {
	f := newSeasonFixture()
	f.league.startResult = domain.RolloverResult{Teams: 2, Players: 2}

	if _, err := f.svc.Submit(context.Background(), key2026); err != nil {
		t.Fatal(err)
	}
	sent := f.league.started["2026"]
	if len(sent.TeamChanges) != 0 || len(sent.Transfers) != 0 {
		t.Errorf("batch = %+v", sent)
	}
}
