package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"fabr-admin/internal/domain"

	"github.com/valyala/fasthttp"
)

func (c *LeagueClient) GetTeams(ctx context.Context, season string) ([]domain.Team, error) {
	path := "/times?temporada=" + url.QueryEscape(season)
	teams, err := doJSON[[]domain.Team](ctx, c, "GET /times", fasthttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}

func (c *LeagueClient) AddTeam(ctx context.Context, team domain.Team) (*domain.Team, error) {
	return doJSON[*domain.Team](ctx, c, "POST /time", fasthttp.MethodPost, "/time", team)
}

func (c *LeagueClient) UpdateTeam(ctx context.Context, team domain.Team) (*domain.Team, error) {
	path := fmt.Sprintf("/time/%d", team.ID)
	return doJSON[*domain.Team](ctx, c, "PUT /time/{id}", fasthttp.MethodPut, path, team)
}

func (c *LeagueClient) DeleteTeam(ctx context.Context, id int) error {
	_, err := c.do(ctx, request{
		endpoint: "DELETE /time/{id}",
		method:   fasthttp.MethodDelete,
		path:     fmt.Sprintf("/time/%d", id),
	})
	return err
}

func (c *LeagueClient) GetPlayers(ctx context.Context, season string) ([]domain.Player, error) {
	path := "/jogadores?temporada=" + url.QueryEscape(season)
	players, err := doJSON[[]domain.Player](ctx, c, "GET /jogadores", fasthttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []domain.Player{}
	}
	return players, nil
}

func (c *LeagueClient) GetPlayerSeason(ctx context.Context, id int, season string) (*domain.Player, error) {
	path := fmt.Sprintf("/jogador/%d/temporada/%s", id, url.PathEscape(season))
	return doJSON[*domain.Player](ctx, c, "GET /jogador/{id}/temporada/{temporada}", fasthttp.MethodGet, path, nil)
}

func (c *LeagueClient) AddPlayer(ctx context.Context, player domain.Player) (*domain.Player, error) {
	return doJSON[*domain.Player](ctx, c, "POST /jogador", fasthttp.MethodPost, "/jogador", player)
}

func (c *LeagueClient) UpdatePlayer(ctx context.Context, player domain.Player) (*domain.Player, error) {
	path := fmt.Sprintf("/jogador/%d", player.ID)
	return doJSON[*domain.Player](ctx, c, "PUT /jogador/{id}", fasthttp.MethodPut, path, domain.PlayerUpdate(player))
}

// DeletePlayer requires a 200; the API answers other 2xx codes when nothing was removed.
func (c *LeagueClient) DeletePlayer(ctx context.Context, id int) error {
	_, err := c.do(ctx, request{
		endpoint:    "DELETE /jogador/{id}",
		method:      fasthttp.MethodDelete,
		path:        fmt.Sprintf("/jogador/%d", id),
		exactStatus: fasthttp.StatusOK,
	})
	return err
}

func (c *LeagueClient) CompareTeams(ctx context.Context, team1, team2 int, season string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("time1Id", strconv.Itoa(team1))
	q.Set("time2Id", strconv.Itoa(team2))
	q.Set("temporada", season)
	return doJSON[json.RawMessage](ctx, c, "GET /comparar-times", fasthttp.MethodGet, "/comparar-times?"+q.Encode(), nil)
}

func (c *LeagueClient) StartSeason(ctx context.Context, year string, changes domain.RolloverChanges) (*domain.RolloverResult, error) {
	if changes.TeamChanges == nil {
		changes.TeamChanges = []domain.TeamChange{}
	}
	if changes.Transfers == nil {
		changes.Transfers = []domain.Transfer{}
	}
	path := "/iniciar-temporada/" + url.PathEscape(year)
	res, err := doJSON[*domain.RolloverResult](ctx, c, "POST /iniciar-temporada/{ano}", fasthttp.MethodPost, path, changes)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &domain.RolloverResult{}
	}
	return res, nil
}

func (c *LeagueClient) GetProcessedGames(ctx context.Context) (json.RawMessage, error) {
	return doJSON[json.RawMessage](ctx, c, "GET /jogos-processados", fasthttp.MethodGet, "/jogos-processados", nil)
}

func (c *LeagueClient) GetArticles(ctx context.Context) ([]domain.Article, error) {
	articles, err := doJSON[[]domain.Article](ctx, c, "GET /materias", fasthttp.MethodGet, "/materias", nil)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return articles, nil
}

func (c *LeagueClient) CreateArticle(ctx context.Context, article domain.Article) (*domain.Article, error) {
	return doJSON[*domain.Article](ctx, c, "POST /materias", fasthttp.MethodPost, "/materias", article)
}

func (c *LeagueClient) UpdateArticle(ctx context.Context, id int, article domain.Article) (*domain.Article, error) {
	path := fmt.Sprintf("/materias/%d", id)
	return doJSON[*domain.Article](ctx, c, "PUT /materias/{id}", fasthttp.MethodPut, path, article)
}

func (c *LeagueClient) DeleteArticle(ctx context.Context, id int) error {
	_, err := c.do(ctx, request{
		endpoint: "DELETE /materias/{id}",
		method:   fasthttp.MethodDelete,
		path:     fmt.Sprintf("/materias/%d", id),
	})
	return err
}
