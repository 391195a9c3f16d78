package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iammohit64/wrap-up/internal/model"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	query := `
		SELECT wallet_address, display_name, points, created_at, updated_at
		FROM users
		WHERE wallet_address = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, walletAddress)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// SetPoints upserts the profile. PointsAwarded events carry the ledger's
// running total, so the stored value is always overwritten, never added to.
func (r *userRepository) SetPoints(ctx context.Context, walletAddress string, points int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (wallet_address, points)
		VALUES ($1, $2)
		ON CONFLICT (wallet_address)
		DO UPDATE SET points = EXCLUDED.points, updated_at = now()
	`, walletAddress, points)
	if err != nil {
		return fmt.Errorf("set points: %w", err)
	}
	return nil
}

func (r *userRepository) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	type row struct {
		WalletAddress string  `db:"wallet_address"`
		DisplayName   *string `db:"display_name"`
		Points        int64   `db:"points"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT wallet_address, display_name, points
		FROM users
		ORDER BY points DESC, wallet_address ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}

	entries := make([]model.LeaderboardEntry, len(rows))
	for i, r := range rows {
		name := ""
		if r.DisplayName != nil {
			name = *r.DisplayName
		}
		entries[i] = model.LeaderboardEntry{
			Rank:          i + 1,
			WalletAddress: r.WalletAddress,
			DisplayName:   name,
			Points:        r.Points,
		}
	}
	return entries, nil
}
