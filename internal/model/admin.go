package model

import (
	"time"
)

type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// AdminIdentity is what a verified session token proves about its bearer.
type AdminIdentity struct {
	ID        string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type UpsertAdminParams struct {
	ID           string
	Username     string
	PasswordHash string
}
