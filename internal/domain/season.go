package domain

import "time"

// TeamChange overrides team fields when the team is copied into a new season.
// Only set fields are sent.
type TeamChange struct {
	TeamID         int    `json:"timeId"`
	Name           string `json:"nome,omitempty"`
	Abbreviation   string `json:"sigla,omitempty"`
	Color          string `json:"cor,omitempty"`
	Instagram      string `json:"instagram,omitempty"`
	Instagram2     string `json:"instagram2,omitempty"`
	Logo           string `json:"logo,omitempty"`
	Helmet         string `json:"capacete,omitempty"`
	President      string `json:"presidente,omitempty"`
	HeadCoach      string `json:"head_coach,omitempty"`
	CoachInstagram string `json:"instagram_coach,omitempty"`
	OffensiveCoord string `json:"coord_ofen,omitempty"`
	DefensiveCoord string `json:"coord_defen,omitempty"`
}

// ChangeField binds a rollover-editable field to its accessors on Team and
// TeamChange.
type ChangeField struct {
	Key    string
	Label  string
	Team   func(*Team) *string
	Change func(*TeamChange) *string
}

// ChangeFields lists the team fields a rollover may override, in display order.
var ChangeFields = []ChangeField{
	{"nome", "Nome", func(t *Team) *string { return &t.Name }, func(c *TeamChange) *string { return &c.Name }},
	{"sigla", "Sigla", func(t *Team) *string { return &t.Abbreviation }, func(c *TeamChange) *string { return &c.Abbreviation }},
	{"cor", "Cor", func(t *Team) *string { return &t.Color }, func(c *TeamChange) *string { return &c.Color }},
	{"instagram", "Instagram", func(t *Team) *string { return &t.Instagram }, func(c *TeamChange) *string { return &c.Instagram }},
	{"instagram2", "@", func(t *Team) *string { return &t.Instagram2 }, func(c *TeamChange) *string { return &c.Instagram2 }},
	{"logo", "Logo", func(t *Team) *string { return &t.Logo }, func(c *TeamChange) *string { return &c.Logo }},
	{"capacete", "Capacete", func(t *Team) *string { return &t.Helmet }, func(c *TeamChange) *string { return &c.Helmet }},
	{"presidente", "Presidente", func(t *Team) *string { return &t.President }, func(c *TeamChange) *string { return &c.President }},
	{"head_coach", "Head Coach", func(t *Team) *string { return &t.HeadCoach }, func(c *TeamChange) *string { return &c.HeadCoach }},
	{"instagram_coach", "Instagram Coach", func(t *Team) *string { return &t.CoachInstagram }, func(c *TeamChange) *string { return &c.CoachInstagram }},
	{"coord_ofen", "Coord. Ofensivo", func(t *Team) *string { return &t.OffensiveCoord }, func(c *TeamChange) *string { return &c.OffensiveCoord }},
	{"coord_defen", "Coord. Defensivo", func(t *Team) *string { return &t.DefensiveCoord }, func(c *TeamChange) *string { return &c.DefensiveCoord }},
}

// Diff returns the change that moves team towards form. A field is kept when
// the form value is non-empty and differs from the team's value. ok is false
// when nothing differs.
func Diff(team Team, form TeamChange) (change TeamChange, ok bool) {
	change.TeamID = team.ID
	for _, f := range ChangeFields {
		want := *f.Change(&form)
		if want == "" || want == *f.Team(&team) {
			continue
		}
		*f.Change(&change) = want
		ok = true
	}
	return change, ok
}

// Merge overlays the set fields of next on top of c.
func (c TeamChange) Merge(next TeamChange) TeamChange {
	out := c
	for _, f := range ChangeFields {
		if v := *f.Change(&next); v != "" {
			*f.Change(&out) = v
		}
	}
	return out
}

// IsEmpty reports whether no field is overridden.
func (c TeamChange) IsEmpty() bool {
	for _, f := range ChangeFields {
		if *f.Change(&c) != "" {
			return false
		}
	}
	return true
}

// Transfer moves a player to another team in the new season.
type Transfer struct {
	PlayerID       int    `json:"jogadorId"`
	PlayerName     string `json:"jogadorNome,omitempty"`
	OriginTeamID   int    `json:"timeOrigemId,omitempty"`
	OriginTeamName string `json:"timeOrigemNome,omitempty"`
	NewTeamID      int    `json:"novoTimeId"`
	NewTeamName    string `json:"novoTimeNome,omitempty"`
	NewPosition    string `json:"novaPosicao,omitempty"`
	NewSector      string `json:"novosetor,omitempty"`
	NewNumber      *int   `json:"novoNumero,omitempty"`
	NewJersey      string `json:"novaCamisa,omitempty"`
}

// TransferInput is what the transfer form submits.
type TransferInput struct {
	PlayerID    int    `json:"jogadorId"`
	NewTeamID   int    `json:"novoTimeId"`
	NewPosition string `json:"novaPosicao,omitempty"`
	NewSector   string `json:"novosetor,omitempty"`
	NewNumber   *int   `json:"novoNumero,omitempty"`
	NewJersey   string `json:"novaCamisa,omitempty"`
}

// RolloverChanges is the batch posted to /iniciar-temporada/{ano}.
type RolloverChanges struct {
	TeamChanges []TeamChange `json:"timeChanges"`
	Transfers   []Transfer   `json:"transferencias"`
}

// RolloverResult is what the API reports after creating the new season.
type RolloverResult struct {
	Teams   int `json:"times"`
	Players int `json:"jogadores"`
}

// DraftKey identifies a rollover draft.
type DraftKey struct {
	CurrentSeason string `json:"current_season"`
	TargetSeason  string `json:"target_season"`
}

// Draft is the pending set of changes for a rollover.
type Draft struct {
	Key         DraftKey       `json:"key"`
	TeamChanges []TeamChange   `json:"time_changes"`
	Transfers   []Transfer     `json:"transferencias"`
	TeamNames   map[int]string `json:"team_names,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Rollover is a submitted rollover kept for history.
type Rollover struct {
	ID             string    `json:"id"`
	CurrentSeason  string    `json:"current_season"`
	TargetSeason   string    `json:"target_season"`
	TeamChanges    int       `json:"team_changes"`
	Transfers      int       `json:"transfers"`
	TeamsCreated   int       `json:"teams_created"`
	PlayersCreated int       `json:"players_created"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// SeasonData is one season's teams and players.
type SeasonData struct {
	Season  string   `json:"season"`
	Teams   []Team   `json:"times"`
	Players []Player `json:"jogadores"`
}
