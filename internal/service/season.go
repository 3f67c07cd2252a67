package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"fabr-admin/internal/catalog"
	"fabr-admin/internal/domain"
	"fabr-admin/internal/events"
	"fabr-admin/internal/metrics"

	"github.com/jonboulle/clockwork"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const rolloverHistoryLimit = 50

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// SubmitResult is what a successful rollover reports back.
type SubmitResult struct {
	Message  string                `json:"message"`
	Result   domain.RolloverResult `json:"result"`
	Rollover domain.Rollover       `json:"rollover"`
}

// SeasonService builds rollover drafts and submits them as one batch.
type SeasonService struct {
	api       LeagueAPI
	drafts    DraftStore
	rollovers RolloverStore
	catalog   *catalog.Catalog
	publisher events.Publisher
	metrics   *metrics.Recorder
	clock     clockwork.Clock
	logger    zerolog.Logger

	// mu serializes read-modify-write cycles on drafts.
	mu sync.Mutex
}

func NewSeasonService(
	api LeagueAPI,
	drafts DraftStore,
	rollovers RolloverStore,
	cat *catalog.Catalog,
	publisher events.Publisher,
	rec *metrics.Recorder,
	clock clockwork.Clock,
	logger zerolog.Logger,
) *SeasonService {
	return &SeasonService{
		api:       api,
		drafts:    drafts,
		rollovers: rollovers,
		catalog:   cat,
		publisher: publisher,
		metrics:   rec,
		clock:     clock,
		logger:    logger.With().Str("component", "season").Logger(),
	}
}

// ValidateKey requires two four digit years with the target after the current one.
func ValidateKey(key domain.DraftKey) error {
	if !yearPattern.MatchString(key.CurrentSeason) {
		return fmt.Errorf("%w: temporada atual %q", ErrInvalidSeason, key.CurrentSeason)
	}
	if !yearPattern.MatchString(key.TargetSeason) {
		return fmt.Errorf("%w: nova temporada %q", ErrInvalidSeason, key.TargetSeason)
	}
	current, _ := strconv.Atoi(key.CurrentSeason)
	target, _ := strconv.Atoi(key.TargetSeason)
	if target <= current {
		return fmt.Errorf("%w: a nova temporada deve ser posterior a %s", ErrInvalidSeason, key.CurrentSeason)
	}
	return nil
}

// LoadSeason fetches the teams and players of a season concurrently.
func (s *SeasonService) LoadSeason(ctx context.Context, season string) (*domain.SeasonData, error) {
	if !yearPattern.MatchString(season) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}

	data := &domain.SeasonData{Season: season}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.api.GetTeams(gctx, season)
		data.Teams = teams
		return err
	})
	g.Go(func() error {
		players, err := s.api.GetPlayers(gctx, season)
		data.Players = players
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("season", season).Msg("failed to load season")
		return nil, upstream("Erro ao carregar dados. Verifique se o servidor backend está rodando.", err)
	}
	return data, nil
}

func (s *SeasonService) GetDraft(ctx context.Context, key domain.DraftKey) (*domain.Draft, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return s.drafts.Get(ctx, key)
}

// AddTeamChange records the fields of form that differ from the team's
// current values. A second change for the same team is merged into the first.
func (s *SeasonService) AddTeamChange(ctx context.Context, key domain.DraftKey, form domain.TeamChange) (*domain.Draft, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if form.TeamID <= 0 {
		return nil, invalid("timeId", "Selecione um time")
	}

	teams, err := s.api.GetTeams(ctx, key.CurrentSeason)
	if err != nil {
		return nil, upstream("Falha ao buscar times", err)
	}
	team, ok := findTeam(teams, form.TeamID)
	if !ok {
		return nil, ErrTeamNotFound
	}

	trimAll(changeFields(&form)...)
	change, ok := domain.Diff(team, form)
	if !ok {
		return nil, ErrNoChanges
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.drafts.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	merged := false
	for i, existing := range draft.TeamChanges {
		if existing.TeamID == change.TeamID {
			draft.TeamChanges[i] = existing.Merge(change)
			merged = true
			break
		}
	}
	if !merged {
		draft.TeamChanges = append(draft.TeamChanges, change)
	}
	if draft.TeamNames == nil {
		draft.TeamNames = map[int]string{}
	}
	draft.TeamNames[team.ID] = team.Name

	if err := s.drafts.Save(ctx, draft, s.clock.Now()); err != nil {
		return nil, err
	}
	s.logger.Info().Int("time_id", team.ID).Bool("merged", merged).Msg("team change staged")
	return draft, nil
}

func (s *SeasonService) RemoveTeamChange(ctx context.Context, key domain.DraftKey, index int) (*domain.Draft, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.drafts.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(draft.TeamChanges) {
		return nil, ErrIndexOutOfRange
	}
	draft.TeamChanges = append(draft.TeamChanges[:index], draft.TeamChanges[index+1:]...)

	if err := s.drafts.Save(ctx, draft, s.clock.Now()); err != nil {
		return nil, err
	}
	return draft, nil
}

// AddTransfer stages a player move. A later transfer of the same player
// replaces the earlier one in place.
func (s *SeasonService) AddTransfer(ctx context.Context, key domain.DraftKey, in domain.TransferInput) (*domain.Draft, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if in.PlayerID <= 0 {
		return nil, invalid("jogadorId", "Selecione um jogador")
	}
	if in.NewTeamID <= 0 {
		return nil, invalid("novoTimeId", "Selecione o novo time")
	}
	trimAll(&in.NewPosition, &in.NewSector, &in.NewJersey)
	if in.NewSector != "" && !s.catalog.IsSector(in.NewSector) {
		return nil, invalid("novosetor", fmt.Sprintf("Setor inválido: %s", in.NewSector))
	}
	if in.NewNumber != nil && *in.NewNumber < 0 {
		return nil, invalid("novoNumero", "Número não pode ser negativo")
	}

	data, err := s.LoadSeason(ctx, key.CurrentSeason)
	if err != nil {
		return nil, err
	}

	var player *domain.Player
	for i := range data.Players {
		if data.Players[i].ID == in.PlayerID {
			player = &data.Players[i]
			break
		}
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	dest, ok := findTeam(data.Teams, in.NewTeamID)
	if !ok {
		return nil, ErrTeamNotFound
	}
	if dest.ID == player.TeamID {
		return nil, ErrSameTeam
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.drafts.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	transfer := domain.Transfer{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		NewTeamID:   dest.ID,
		NewTeamName: destinationName(draft, dest),
		NewPosition: in.NewPosition,
		NewSector:   in.NewSector,
		NewNumber:   in.NewNumber,
		NewJersey:   in.NewJersey,
	}
	if origin, ok := findTeam(data.Teams, player.TeamID); ok {
		transfer.OriginTeamID = origin.ID
		transfer.OriginTeamName = origin.Name
	}

	replaced := false
	for i, existing := range draft.Transfers {
		if existing.PlayerID == transfer.PlayerID {
			draft.Transfers[i] = transfer
			replaced = true
			break
		}
	}
	if !replaced {
		draft.Transfers = append(draft.Transfers, transfer)
	}

	if err := s.drafts.Save(ctx, draft, s.clock.Now()); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("jogador_id", transfer.PlayerID).
		Int("novo_time_id", transfer.NewTeamID).
		Bool("replaced", replaced).
		Msg("transfer staged")
	return draft, nil
}

func (s *SeasonService) RemoveTransfer(ctx context.Context, key domain.DraftKey, index int) (*domain.Draft, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.drafts.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(draft.Transfers) {
		return nil, ErrIndexOutOfRange
	}
	draft.Transfers = append(draft.Transfers[:index], draft.Transfers[index+1:]...)

	if err := s.drafts.Save(ctx, draft, s.clock.Now()); err != nil {
		return nil, err
	}
	return draft, nil
}

// Submit posts the draft to the league API. The draft is cleared only when
// the API accepts it.
func (s *SeasonService) Submit(ctx context.Context, key domain.DraftKey) (*SubmitResult, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.drafts.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	log := s.logger.With().
		Str("current_season", key.CurrentSeason).
		Str("target_season", key.TargetSeason).
		Int("team_changes", len(draft.TeamChanges)).
		Int("transfers", len(draft.Transfers)).
		Logger()
	log.Info().Msg("submitting rollover")

	result, err := s.api.StartSeason(ctx, key.TargetSeason, domain.RolloverChanges{
		TeamChanges: draft.TeamChanges,
		Transfers:   draft.Transfers,
	})
	s.metrics.RecordRollover(err)
	if err != nil {
		log.Error().Err(err).Msg("rollover rejected")
		return nil, upstream("Falha ao iniciar nova temporada", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate rollover id: %w", err)
	}
	rollover := domain.Rollover{
		ID:             id,
		CurrentSeason:  key.CurrentSeason,
		TargetSeason:   key.TargetSeason,
		TeamChanges:    len(draft.TeamChanges),
		Transfers:      len(draft.Transfers),
		TeamsCreated:   result.Teams,
		PlayersCreated: result.Players,
		SubmittedAt:    s.clock.Now().UTC(),
	}

	// the season exists upstream by now; bookkeeping failures are only logged
	if err := s.drafts.Delete(ctx, key); err != nil {
		log.Error().Err(err).Msg("failed to clear draft after rollover")
	}
	if err := s.rollovers.Create(ctx, rollover); err != nil {
		log.Error().Err(err).Msg("failed to record rollover")
	}
	s.publisher.Publish(ctx, events.SubjectSeasonStarted, events.SeasonStarted{
		CurrentSeason:  rollover.CurrentSeason,
		TargetSeason:   rollover.TargetSeason,
		TeamsCreated:   rollover.TeamsCreated,
		PlayersCreated: rollover.PlayersCreated,
		TeamChanges:    rollover.TeamChanges,
		Transfers:      rollover.Transfers,
		SubmittedAt:    rollover.SubmittedAt,
	})

	log.Info().Int("times", result.Teams).Int("jogadores", result.Players).Msg("rollover completed")
	return &SubmitResult{
		Message: fmt.Sprintf("Temporada %s iniciada com sucesso! %d times e %d jogadores criados.",
			key.TargetSeason, result.Teams, result.Players),
		Result:   *result,
		Rollover: rollover,
	}, nil
}

func (s *SeasonService) History(ctx context.Context) ([]domain.Rollover, error) {
	return s.rollovers.List(ctx, rolloverHistoryLimit)
}

// destinationName prefers the name a pending change gives the team.
func destinationName(draft *domain.Draft, team domain.Team) string {
	for _, c := range draft.TeamChanges {
		if c.TeamID == team.ID && c.Name != "" {
			return c.Name
		}
	}
	return team.Name
}

func changeFields(c *domain.TeamChange) []*string {
	out := make([]*string, 0, len(domain.ChangeFields))
	for _, f := range domain.ChangeFields {
		out = append(out, f.Change(c))
	}
	return out
}
