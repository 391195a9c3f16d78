package model

import (
	"errors"
	"time"
)

// AnonPrefix marks ephemeral session identities that never map to a wallet
// profile. Identities with this prefix always resolve to "Anonymous".
const AnonPrefix = "anon_"

// User is a wallet profile. Users are created lazily the first time a wallet
// interacts with the system; Points mirrors the ledger's authoritative total
// from PointsAwarded events.
type User struct {
	WalletAddress string    `db:"wallet_address" json:"wallet_address"`
	DisplayName   *string   `db:"display_name" json:"display_name"`
	Points        int64     `db:"points" json:"points"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	WalletAddress string `json:"wallet_address"`
	DisplayName   string `json:"display_name"`
	Points        int64  `json:"points"`
}

// User errors
var (
	ErrUserNotFound = errors.New("user not found")
)
