package db

import (
	"time"
)

type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type RolloverDraft struct {
	ID            int64
	CurrentSeason string
	TargetSeason  string
	UpdatedAt     time.Time
}

type DraftTeamChange struct {
	ID       int64
	DraftID  int64
	TeamID   int64
	TeamName string
	Payload  string
}

type DraftTransfer struct {
	ID       int64
	DraftID  int64
	PlayerID int64
	Payload  string
}

type Rollover struct {
	ID             string
	CurrentSeason  string
	TargetSeason   string
	TeamChanges    int64
	Transfers      int64
	TeamsCreated   int64
	PlayersCreated int64
	SubmittedAt    time.Time
}
