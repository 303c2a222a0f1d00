package model

import "time"

type Winner struct {
	Rank      int       `db:"rank" json:"rank"`
	TeamName  string    `db:"team_name" json:"team_name"`
	Members   string    `db:"members" json:"members"`
	Score     string    `db:"score" json:"score"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type UpsertWinnerParams struct {
	Rank     int
	TeamName string
	Members  string
	Score    string
}

type ContentEntry struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
