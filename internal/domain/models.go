package domain

import (
	"time"
)

// ProfileRequest is the payload of the player profile endpoint.
type ProfileRequest struct {
	CallbackContextKey string   `json:"callbackcontextkey"`
	SeasonID           SeasonID `json:"seasonid"`
	PlayerID           string   `json:"playerid"`
	GetPlayerData      bool     `json:"getplayerdata"`
	ShowUserProfile    bool     `json:"showUserProfile"`
	ShowHeader         bool     `json:"showheader"`
}

func NewProfileRequest(callbackContextKey string, season SeasonID, playerID string) ProfileRequest {
	return ProfileRequest{
		CallbackContextKey: callbackContextKey,
		SeasonID:           season,
		PlayerID:           playerID,
		GetPlayerData:      true,
		ShowUserProfile:    true,
		ShowHeader:         false,
	}
}

// RankingQueryParams carries the values lifted from the profile page's
// show-points handler. They are replayed verbatim, so they stay strings.
type RankingQueryParams struct {
	CallbackContextKey  string `json:"callbackcontextkey"`
	SeasonID            string `json:"seasonid"`
	PlayerID            string `json:"playerid"`
	RankingListID       string `json:"rankinglistid"`
	RankingListPlayerID string `json:"rankinglistplayerid"`
	GetPlayerData       bool   `json:"getplayerdata"`
}

type ScrapeRun struct {
	ID          string // uuid
	PlayerID    string
	StartedAt   time.Time
	FinishedAt  time.Time
	RecordCount int
}

type StoredRecord struct {
	ID       string // nanoid
	RunID    string
	SeasonID string
	RowIndex int
	Record   RankingRecord
}
