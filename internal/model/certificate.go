package model

import (
	"strings"
	"time"
)

type Certificate struct {
	ID                   string    `db:"id" json:"id"`
	ParticipantName      string    `db:"participant_name" json:"participant_name"`
	ParticipantNameLower string    `db:"participant_name_lower" json:"-"`
	Filename             string    `db:"filename" json:"-"`
	DownloadedCount      int64     `db:"downloaded_count" json:"downloaded_count"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// CertificateMatch is a search hit; only the id and display name leave the server.
type CertificateMatch struct {
	ID              string `db:"id" json:"id"`
	ParticipantName string `db:"participant_name" json:"participant_name"`
}

type CertificateStats struct {
	Total          int64 `db:"total" json:"total"`
	TotalDownloads int64 `db:"total_downloads" json:"totalDownloads"`
}

type UpsertCertificateParams struct {
	ID              string
	ParticipantName string
	Filename        string
}

// NormalizeName is the match key stored alongside every participant name.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}
