package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fabr-admin/internal/catalog"
	"fabr-admin/internal/constants"
	"fabr-admin/internal/domain"
	"fabr-admin/internal/middleware"
	"fabr-admin/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type AdminServer struct {
	authSvc      *service.AuthService
	teamSvc      *service.TeamService
	playerSvc    *service.PlayerService
	articleSvc   *service.ArticleService
	seasonSvc    *service.SeasonService
	dashboardSvc *service.DashboardService
	importSvc    *service.ImportService
	catalog      *catalog.Catalog
	logger       zerolog.Logger
}

func NewAdminServer(
	authSvc *service.AuthService,
	teamSvc *service.TeamService,
	playerSvc *service.PlayerService,
	articleSvc *service.ArticleService,
	seasonSvc *service.SeasonService,
	dashboardSvc *service.DashboardService,
	importSvc *service.ImportService,
	cat *catalog.Catalog,
	logger zerolog.Logger,
) *AdminServer {
	return &AdminServer{
		authSvc:      authSvc,
		teamSvc:      teamSvc,
		playerSvc:    playerSvc,
		articleSvc:   articleSvc,
		seasonSvc:    seasonSvc,
		dashboardSvc: dashboardSvc,
		importSvc:    importSvc,
		catalog:      cat,
		logger:       logger.With().Str("component", "admin_server").Logger(),
	}
}

// Login opens a session and sets the auth cookie. An already authenticated
// caller gets its current session back.
func (s *AdminServer) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[SessionResponse], error) {
	if current := middleware.SessionFrom(ctx); current != nil {
		return connect.NewResponse(sessionResponse(current)), nil
	}

	session, err := s.authSvc.Login(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		return nil, toConnect(ctx, err)
	}

	resp := connect.NewResponse(sessionResponse(session))
	resp.Header().Add("Set-Cookie", s.sessionCookie(session.Token, int(s.authSvc.TTL().Seconds())).String())
	return resp, nil
}

func (s *AdminServer) Logout(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[Empty], error) {
	if current := middleware.SessionFrom(ctx); current != nil {
		if err := s.authSvc.Logout(ctx, current.Token); err != nil {
			return nil, toConnect(ctx, err)
		}
		s.logger.Info().Str("username", current.Username).Msg("session closed")
	}

	resp := connect.NewResponse(&Empty{})
	resp.Header().Add("Set-Cookie", s.sessionCookie("", -1).String())
	return resp, nil
}

func (s *AdminServer) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}

func (s *AdminServer) Session(ctx context.Context, _ *Empty) (*SessionResponse, error) {
	current := middleware.SessionFrom(ctx)
	if current == nil {
		return nil, service.ErrUnauthenticated
	}
	return sessionResponse(current), nil
}

func sessionResponse(s *domain.Session) *SessionResponse {
	return &SessionResponse{Username: s.Username, ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339)}
}

func (s *AdminServer) GetFormSchema(_ context.Context, _ *Empty) (*catalog.Catalog, error) {
	return s.catalog, nil
}

// teams

func (s *AdminServer) ListTeams(ctx context.Context, req *SeasonRequest) (*TeamsResponse, error) {
	teams, err := s.teamSvc.ListTeams(ctx, req.Season)
	if err != nil {
		return nil, err
	}
	return &TeamsResponse{Teams: orEmpty(teams)}, nil
}

func (s *AdminServer) CreateTeam(ctx context.Context, req *domain.Team) (*TeamResponse, error) {
	team, err := s.teamSvc.CreateTeam(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &TeamResponse{Team: team}, nil
}

func (s *AdminServer) UpdateTeam(ctx context.Context, req *domain.Team) (*TeamResponse, error) {
	team, err := s.teamSvc.UpdateTeam(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &TeamResponse{Team: team}, nil
}

func (s *AdminServer) DeleteTeam(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.teamSvc.DeleteTeam(ctx, req.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *AdminServer) FilterRoster(ctx context.Context, req *FilterRosterRequest) (*PlayersResponse, error) {
	players, err := s.teamSvc.FilterRoster(ctx, req.TeamID, req.Season, req.Term)
	if err != nil {
		return nil, err
	}
	return &PlayersResponse{Players: orEmpty(players)}, nil
}

func (s *AdminServer) CompareTeams(ctx context.Context, req *CompareTeamsRequest) (*json.RawMessage, error) {
	out, err := s.teamSvc.CompareTeams(ctx, req.Team1, req.Team2, req.Season)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// players

func (s *AdminServer) ListPlayers(ctx context.Context, req *SeasonRequest) (*PlayersResponse, error) {
	players, err := s.playerSvc.ListPlayers(ctx, req.Season)
	if err != nil {
		return nil, err
	}
	return &PlayersResponse{Players: orEmpty(players)}, nil
}

func (s *AdminServer) GetPlayerSeason(ctx context.Context, req *PlayerSeasonRequest) (*PlayerResponse, error) {
	player, err := s.playerSvc.GetPlayerSeason(ctx, req.ID, req.Season)
	if err != nil {
		return nil, err
	}
	return &PlayerResponse{Player: player}, nil
}

func (s *AdminServer) CreatePlayer(ctx context.Context, req *domain.Player) (*PlayerResponse, error) {
	player, err := s.playerSvc.CreatePlayer(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &PlayerResponse{Player: player}, nil
}

func (s *AdminServer) UpdatePlayer(ctx context.Context, req *domain.Player) (*PlayerResponse, error) {
	player, err := s.playerSvc.UpdatePlayer(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &PlayerResponse{Player: player}, nil
}

func (s *AdminServer) DeletePlayer(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.playerSvc.DeletePlayer(ctx, req.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *AdminServer) SearchPlayers(ctx context.Context, req *SearchPlayersRequest) (*PlayersResponse, error) {
	players, err := s.playerSvc.SearchPlayers(ctx, req.Season, req.Term)
	if err != nil {
		return nil, err
	}
	return &PlayersResponse{Players: orEmpty(players)}, nil
}

// articles

func (s *AdminServer) ListArticles(ctx context.Context, _ *Empty) (*ArticlesResponse, error) {
	articles, err := s.articleSvc.ListArticles(ctx)
	if err != nil {
		return nil, err
	}
	return &ArticlesResponse{Articles: orEmpty(articles)}, nil
}

func (s *AdminServer) CreateArticle(ctx context.Context, req *domain.ArticleInput) (*ArticleResponse, error) {
	article, err := s.articleSvc.CreateArticle(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &ArticleResponse{Article: article}, nil
}

func (s *AdminServer) UpdateArticle(ctx context.Context, req *domain.ArticleInput) (*ArticleResponse, error) {
	article, err := s.articleSvc.UpdateArticle(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &ArticleResponse{Article: article}, nil
}

func (s *AdminServer) DeleteArticle(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.articleSvc.DeleteArticle(ctx, req.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

// season rollover

func (s *AdminServer) LoadSeason(ctx context.Context, req *SeasonRequest) (*domain.SeasonData, error) {
	data, err := s.seasonSvc.LoadSeason(ctx, req.Season)
	if err != nil {
		return nil, err
	}
	data.Teams = orEmpty(data.Teams)
	data.Players = orEmpty(data.Players)
	return data, nil
}

func (s *AdminServer) GetDraft(ctx context.Context, req *DraftRequest) (*DraftResponse, error) {
	return draftResponse(s.seasonSvc.GetDraft(ctx, req.DraftKey))
}

func (s *AdminServer) AddTeamChange(ctx context.Context, req *TeamChangeRequest) (*DraftResponse, error) {
	return draftResponse(s.seasonSvc.AddTeamChange(ctx, req.DraftKey, req.Change))
}

func (s *AdminServer) RemoveTeamChange(ctx context.Context, req *RemoveRequest) (*DraftResponse, error) {
	return draftResponse(s.seasonSvc.RemoveTeamChange(ctx, req.DraftKey, req.Index))
}

func (s *AdminServer) AddTransfer(ctx context.Context, req *TransferRequest) (*DraftResponse, error) {
	return draftResponse(s.seasonSvc.AddTransfer(ctx, req.DraftKey, req.Transfer))
}

func (s *AdminServer) RemoveTransfer(ctx context.Context, req *RemoveRequest) (*DraftResponse, error) {
	return draftResponse(s.seasonSvc.RemoveTransfer(ctx, req.DraftKey, req.Index))
}

func draftResponse(draft *domain.Draft, err error) (*DraftResponse, error) {
	if err != nil {
		return nil, err
	}
	draft.TeamChanges = orEmpty(draft.TeamChanges)
	draft.Transfers = orEmpty(draft.Transfers)
	return &DraftResponse{Draft: draft}, nil
}

func (s *AdminServer) SubmitRollover(ctx context.Context, req *DraftRequest) (*service.SubmitResult, error) {
	return s.seasonSvc.Submit(ctx, req.DraftKey)
}

func (s *AdminServer) ListRollovers(ctx context.Context, _ *Empty) (*RolloversResponse, error) {
	rollovers, err := s.seasonSvc.History(ctx)
	if err != nil {
		return nil, err
	}
	return &RolloversResponse{Rollovers: orEmpty(rollovers)}, nil
}

// dashboard

func (s *AdminServer) ListReports(_ context.Context, _ *Empty) (*ReportsResponse, error) {
	return &ReportsResponse{Reports: s.dashboardSvc.ListReports()}, nil
}

func (s *AdminServer) RunReport(ctx context.Context, req *RunReportRequest) (*domain.ReportResult, error) {
	return s.dashboardSvc.RunReport(ctx, req.ID, req.Season)
}

func (s *AdminServer) ListProcessedGames(ctx context.Context, _ *Empty) (*json.RawMessage, error) {
	out, err := s.importSvc.ListProcessedGames(ctx)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
