package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fabr-admin/internal/config"
	"fabr-admin/internal/constants"
	"fabr-admin/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type report struct {
	domain.Report
	run func(season string, teams []domain.Team, players []domain.Player) *domain.ReportResult
}

var reports = []report{
	{domain.Report{ID: "jogadores-time", Title: "Jogadores por Time", Description: "Exibe a quantidade de jogadores por time"}, playersPerTeam},
	{domain.Report{ID: "top-passadores", Title: "Top Passadores", Description: "Lista os jogadores com mais touchdowns passados"}, topPassers},
	{domain.Report{ID: "top-recebedores", Title: "Top Recebedores", Description: "Lista os jogadores com mais touchdowns recebidos"}, topReceivers},
	{domain.Report{ID: "top-defesas", Title: "Top Defensores", Description: "Lista os jogadores com mais flags retiradas"}, topDefenders},
	{domain.Report{ID: "td-por-time", Title: "Touchdowns por Time", Description: "Mostra o total de touchdowns por time (passes, corridas e recepções)"}, touchdownsPerTeam},
}

type DashboardService struct {
	api           LeagueAPI
	defaultSeason string
	logger        zerolog.Logger
}

func NewDashboardService(api LeagueAPI, cfg *config.Config, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		api:           api,
		defaultSeason: cfg.DefaultSeason,
		logger:        logger.With().Str("component", "dashboard").Logger(),
	}
}

func (s *DashboardService) ListReports() []domain.Report {
	out := make([]domain.Report, len(reports))
	for i, r := range reports {
		out[i] = r.Report
	}
	return out
}

func (s *DashboardService) RunReport(ctx context.Context, id, season string) (*domain.ReportResult, error) {
	idx := slices.IndexFunc(reports, func(r report) bool { return r.ID == id })
	if idx < 0 {
		return nil, ErrReportNotFound
	}
	if season = strings.TrimSpace(season); season == "" {
		season = s.defaultSeason
	}

	var teams []domain.Team
	var players []domain.Player
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.api.GetTeams(gctx, season)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.api.GetPlayers(gctx, season)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, upstream("Falha ao carregar dados do dashboard", err)
	}

	s.logger.Debug().Str("report", id).Str("season", season).
		Int("teams", len(teams)).Int("players", len(players)).Msg("running report")
	return reports[idx].run(season, teams, players), nil
}

func table(header []string, rows [][]any, summary string) *domain.ReportResult {
	if rows == nil {
		rows = [][]any{}
	}
	return &domain.ReportResult{Type: domain.ReportTypeTable, Header: header, Rows: rows, Summary: summary}
}

func teamIndex(teams []domain.Team) map[int]domain.Team {
	byID := make(map[int]domain.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	return byID
}

func abbreviationOf(byID map[int]domain.Team, id int) string {
	if t, ok := byID[id]; ok && t.Abbreviation != "" {
		return t.Abbreviation
	}
	return "-"
}

// percent renders part/whole with one decimal, "0" when whole is zero.
func percent(part, whole float64) string {
	if whole == 0 {
		return "0"
	}
	return strconv.FormatFloat(part/whole*100, 'f', 1, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func playersPerTeam(_ string, teams []domain.Team, players []domain.Player) *domain.ReportResult {
	counts := make(map[int]int, len(teams))
	for _, p := range players {
		counts[p.TeamID]++
	}

	type row struct {
		name  string
		count int
	}
	var rowsByTeam []row
	for _, t := range teams {
		rowsByTeam = append(rowsByTeam, row{t.Name, counts[t.ID]})
	}
	slices.SortStableFunc(rowsByTeam, func(a, b row) int { return b.count - a.count })

	rows := make([][]any, 0, len(rowsByTeam))
	for _, r := range rowsByTeam {
		rows = append(rows, []any{r.name, r.count})
	}
	return table([]string{"Time", "Quantidade de Jogadores"}, rows,
		fmt.Sprintf("Total de %d jogadores distribuídos em %d times.", len(players), len(teams)))
}

type statLine struct {
	player domain.Player
	values []float64
}

// leaders keeps players with any of the given stats and sorts them by keys,
// descending, in order.
func leaders(players []domain.Player, group string, fields []string, keys []int) []statLine {
	var out []statLine
	for _, p := range players {
		line := statLine{player: p, values: make([]float64, len(fields))}
		found := false
		for i, f := range fields {
			line.values[i] = p.Statistics.Get(group, f)
			if line.values[i] != 0 {
				found = true
			}
		}
		if found {
			out = append(out, line)
		}
	}
	slices.SortStableFunc(out, func(a, b statLine) int {
		for _, k := range keys {
			if a.values[k] != b.values[k] {
				if a.values[k] > b.values[k] {
					return -1
				}
				return 1
			}
		}
		return 0
	})
	return out
}

func top(lines []statLine) []statLine {
	if len(lines) > constants.ReportTopLimit {
		return lines[:constants.ReportTopLimit]
	}
	return lines
}

func topPassers(season string, teams []domain.Team, players []domain.Player) *domain.ReportResult {
	byID := teamIndex(teams)
	lines := leaders(players, "ataque", []string{"td_passado", "passes_completos", "passes_tentados"}, []int{0, 1})

	var rows [][]any
	for _, l := range top(lines) {
		td, comp, att := l.values[0], l.values[1], l.values[2]
		rows = append(rows, []any{
			l.player.Name,
			abbreviationOf(byID, l.player.TeamID),
			td,
			formatNumber(comp) + "/" + formatNumber(att),
			percent(comp, att) + "%",
		})
	}
	return table([]string{"Jogador", "Time", "TD Passados", "Passes Comp/Tent", "%"}, rows,
		fmt.Sprintf("Top %d passadores da temporada %s", len(rows), season))
}

func topReceivers(season string, teams []domain.Team, players []domain.Player) *domain.ReportResult {
	byID := teamIndex(teams)
	lines := leaders(players, "ataque", []string{"td_recebido", "recepcao"}, []int{0, 1})

	var rows [][]any
	for _, l := range top(lines) {
		target := l.player.Statistics.Get("ataque", "alvo")
		rows = append(rows, []any{
			l.player.Name,
			abbreviationOf(byID, l.player.TeamID),
			l.values[0],
			l.values[1],
			target,
			percent(l.values[1], target) + "%",
		})
	}
	return table([]string{"Jogador", "Time", "TD Recebidos", "Recepções", "Alvos", "%"}, rows,
		fmt.Sprintf("Top %d recebedores da temporada %s", len(rows), season))
}

func topDefenders(season string, teams []domain.Team, players []domain.Player) *domain.ReportResult {
	byID := teamIndex(teams)
	lines := leaders(players, "defesa", []string{"flag_retirada", "interceptacao_forcada", "sack"}, []int{0})

	var rows [][]any
	for _, l := range top(lines) {
		stats := l.player.Statistics
		rows = append(rows, []any{
			l.player.Name,
			abbreviationOf(byID, l.player.TeamID),
			l.values[0],
			l.values[2],
			l.values[1],
			stats.Get("defesa", "passe_desviado"),
			stats.Get("defesa", "td_defensivo"),
		})
	}
	return table([]string{"Jogador", "Time", "Flags Ret.", "Sacks", "INT", "Passes Desv.", "TD Def."}, rows,
		fmt.Sprintf("Top %d defensores da temporada %s", len(rows), season))
}

func touchdownsPerTeam(season string, teams []domain.Team, players []domain.Player) *domain.ReportResult {
	type tally struct {
		name     string
		passed   float64
		rushed   float64
		received float64
		defense  float64
		total    float64
	}
	tallies := make([]*tally, 0, len(teams))
	byID := make(map[int]*tally, len(teams))
	for _, t := range teams {
		if t.Name == "" {
			continue
		}
		tl := &tally{name: t.Name}
		tallies = append(tallies, tl)
		byID[t.ID] = tl
	}

	for _, p := range players {
		tl, ok := byID[p.TeamID]
		if !ok {
			continue
		}
		passed := p.Statistics.Get("ataque", "td_passado")
		rushed := p.Statistics.Get("ataque", "tds_corridos")
		received := p.Statistics.Get("ataque", "td_recebido")
		defense := p.Statistics.Get("defesa", "td_defensivo")
		tl.passed += passed
		tl.rushed += rushed
		tl.received += received
		tl.defense += defense
		tl.total += passed + rushed + received + defense
	}

	slices.SortStableFunc(tallies, func(a, b *tally) int {
		switch {
		case a.total > b.total:
			return -1
		case a.total < b.total:
			return 1
		}
		return 0
	})

	rows := make([][]any, 0, len(tallies))
	for _, t := range tallies {
		rows = append(rows, []any{t.name, t.passed, t.rushed, t.received, t.defense, t.total})
	}
	return table([]string{"Time", "TD Passados", "TD Corridos", "TD Recebidos", "TD Defensivos", "Total TDs"}, rows,
		fmt.Sprintf("Touchdowns por time na temporada %s", season))
}
