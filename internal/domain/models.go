package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Team mirrors the league API "time" record.
type Team struct {
	ID             int      `json:"id,omitempty"`
	Name           string   `json:"nome,omitempty"`
	Abbreviation   string   `json:"sigla,omitempty"`
	Color          string   `json:"cor,omitempty"`
	City           string   `json:"cidade,omitempty"`
	StateFlag      string   `json:"bandeira_estado,omitempty"`
	Founded        string   `json:"fundacao,omitempty"`
	Instagram      string   `json:"instagram,omitempty"`
	Instagram2     string   `json:"instagram2,omitempty"`
	Logo           string   `json:"logo,omitempty"`
	Helmet         string   `json:"capacete,omitempty"`
	Stadium        string   `json:"estadio,omitempty"`
	President      string   `json:"presidente,omitempty"`
	HeadCoach      string   `json:"head_coach,omitempty"`
	CoachInstagram string   `json:"instagram_coach,omitempty"`
	OffensiveCoord string   `json:"coord_ofen,omitempty"`
	DefensiveCoord string   `json:"coord_defen,omitempty"`
	Titles         *Titles  `json:"titulos,omitempty"`
	Season         string   `json:"temporada,omitempty"`
	Players        []Player `json:"jogadores,omitempty"`
}

// Titles counts a team's championships. The API stores it as a one element
// array; forms send a bare object. Both decode, and it always encodes as an array.
type Titles struct {
	National   int `json:"nacionais"`
	Conference int `json:"conferencias"`
	State      int `json:"estaduais"`
}

type titlesFields Titles

func (t Titles) MarshalJSON() ([]byte, error) {
	return json.Marshal([]titlesFields{titlesFields(t)})
}

func (t *Titles) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var list []titlesFields
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			*t = Titles(list[0])
		}
		return nil
	}
	var single titlesFields
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*t = Titles(single)
	return nil
}

// Player mirrors the league API "jogador" record.
type Player struct {
	ID          int        `json:"id,omitempty"`
	Name        string     `json:"nome,omitempty"`
	TeamID      int        `json:"timeId,omitempty"`
	FormingTeam string     `json:"timeFormador,omitempty"`
	Position    string     `json:"posicao,omitempty"`
	Sector      string     `json:"setor,omitempty"`
	Experience  int        `json:"experiencia,omitempty"`
	Number      int        `json:"numero,omitempty"`
	Age         int        `json:"idade,omitempty"`
	Height      Measure    `json:"altura,omitempty"`
	Weight      Measure    `json:"peso,omitempty"`
	City        string     `json:"cidade,omitempty"`
	Nationality string     `json:"nacionalidade,omitempty"`
	Instagram   string     `json:"instagram,omitempty"`
	Instagram2  string     `json:"instagram2,omitempty"`
	Jersey      string     `json:"camisa,omitempty"`
	Season      string     `json:"temporada,omitempty"`
	Statistics  Statistics `json:"estatisticas,omitempty"`
}

// PlayerUpdate is the PUT /jogador/{id} body. Numbers and statistics are
// always sent so a value corrected to zero reaches the API.
type PlayerUpdate struct {
	ID          int        `json:"id"`
	Name        string     `json:"nome,omitempty"`
	TeamID      int        `json:"timeId"`
	FormingTeam string     `json:"timeFormador,omitempty"`
	Position    string     `json:"posicao,omitempty"`
	Sector      string     `json:"setor,omitempty"`
	Experience  int        `json:"experiencia"`
	Number      int        `json:"numero"`
	Age         int        `json:"idade"`
	Height      Measure    `json:"altura"`
	Weight      Measure    `json:"peso"`
	City        string     `json:"cidade,omitempty"`
	Nationality string     `json:"nacionalidade,omitempty"`
	Instagram   string     `json:"instagram,omitempty"`
	Instagram2  string     `json:"instagram2,omitempty"`
	Jersey      string     `json:"camisa,omitempty"`
	Season      string     `json:"temporada,omitempty"`
	Statistics  Statistics `json:"estatisticas,omitempty"`
}

// Measure is a decimal that also decodes from form strings such as "1,85".
type Measure float64

func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseMeasure(s)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Measure(f)
	return nil
}

// ParseMeasure accepts a comma or dot decimal separator. Blank input is zero.
func ParseMeasure(s string) (Measure, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid measure %q", s)
	}
	return Measure(f), nil
}

// StatValue is a statistic cell. Most cells are numbers; kicker "fg" cells may
// carry text like "3/5".
type StatValue struct {
	Number float64
	Text   string
}

func Num(v float64) StatValue { return StatValue{Number: v} }

func Text(s string) StatValue { return StatValue{Text: s} }

func (v StatValue) IsText() bool { return v.Text != "" }

func (v StatValue) IsZero() bool { return v.Text == "" && v.Number == 0 }

// Float returns the numeric value, parsing text cells when they hold a number.
func (v StatValue) Float() float64 {
	if v.Text == "" {
		return v.Number
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(v.Text, ",", "."), 64); err == nil {
		return f
	}
	return 0
}

func (v StatValue) MarshalJSON() ([]byte, error) {
	if v.Text != "" {
		return json.Marshal(v.Text)
	}
	return json.Marshal(v.Number)
}

func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = StatValue{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &v.Text)
	}
	return json.Unmarshal(data, &v.Number)
}

// Statistics groups stat lines by category (ataque, defesa, passe, kicker...).
type Statistics map[string]map[string]StatValue

// Get returns the numeric value of group.field, zero when absent.
func (s Statistics) Get(group, field string) float64 {
	if s == nil {
		return 0
	}
	return s[group][field].Float()
}

// Compact drops empty cells and groups left with no cells.
func (s Statistics) Compact() Statistics {
	if len(s) == 0 {
		return nil
	}
	out := make(Statistics, len(s))
	for group, fields := range s {
		kept := make(map[string]StatValue, len(fields))
		for field, v := range fields {
			if v.IsText() || v.Number != 0 {
				kept[field] = v
			}
		}
		if len(kept) > 0 {
			out[group] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Article is a news article ("matéria").
type Article struct {
	ID          int       `json:"id,omitempty"`
	Title       string    `json:"titulo"`
	Subtitle    string    `json:"subtitulo"`
	Image       string    `json:"imagem"`
	Caption     string    `json:"legenda"`
	Body        string    `json:"texto"`
	Author      string    `json:"autor"`
	AuthorImage string    `json:"autorImage"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// ArticleInput is the article form. Timestamps arrive as datetime-local
// strings ("2025-03-01T18:30") or RFC 3339.
type ArticleInput struct {
	ID          int    `json:"id,omitempty"`
	Title       string `json:"titulo"`
	Subtitle    string `json:"subtitulo"`
	Image       string `json:"imagem"`
	Caption     string `json:"legenda"`
	Body        string `json:"texto"`
	Author      string `json:"autor"`
	AuthorImage string `json:"autorImage"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Session is an authenticated admin session.
type Session struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
