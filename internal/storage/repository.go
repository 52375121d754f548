package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ggyhrr/gift-code/internal/roster"
)

// Repository persists the roster projection between runs. Only the resting
// shape of an account is stored: id, account number, profile and the
// validated flag. Status is never persisted; every load comes back idle.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository backed by SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(32) PRIMARY KEY,
			account_number VARCHAR(50) UNIQUE NOT NULL,
			validated INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			nickname VARCHAR(100),
			fid INTEGER,
			kingdom_id INTEGER,
			stove_level INTEGER,
			stove_level_icon TEXT,
			avatar_url TEXT,
			total_recharge INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_number ON accounts(account_number)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// SaveAccounts replaces the stored roster with the given one, preserving
// insertion order via the position column.
func (r *Repository) SaveAccounts(accounts []roster.Account) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM accounts`); err != nil {
		return err
	}

	for i, acc := range accounts {
		var (
			nickname, stoveIcon, avatarURL sql.NullString
			fid, totalRecharge             sql.NullInt64
			kingdomID, stoveLevel          sql.NullInt64
		)
		if p := acc.Profile; p != nil {
			nickname = sql.NullString{String: p.Nickname, Valid: true}
			stoveIcon = sql.NullString{String: p.StoveLevelIcon, Valid: true}
			avatarURL = sql.NullString{String: p.AvatarURL, Valid: true}
			fid = sql.NullInt64{Int64: p.FID, Valid: true}
			totalRecharge = sql.NullInt64{Int64: p.TotalRecharge, Valid: true}
			kingdomID = sql.NullInt64{Int64: int64(p.KingdomID), Valid: true}
			stoveLevel = sql.NullInt64{Int64: int64(p.StoveLevel), Valid: true}
		}

		_, err := tx.Exec(
			`INSERT INTO accounts (id, account_number, validated, position, nickname, fid, kingdom_id, stove_level, stove_level_icon, avatar_url, total_recharge, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			acc.ID, acc.AccountNumber, boolToInt(acc.Validated), i,
			nickname, fid, kingdomID, stoveLevel, stoveIcon, avatarURL, totalRecharge,
			time.Now(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadAccounts returns the stored roster in its original order. Accounts
// always come back in idle status.
func (r *Repository) LoadAccounts() ([]roster.Account, error) {
	rows, err := r.db.Query(
		`SELECT id, account_number, validated, nickname, fid, kingdom_id, stove_level, stove_level_icon, avatar_url, total_recharge
		 FROM accounts ORDER BY position ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []roster.Account
	for rows.Next() {
		var (
			acc                            roster.Account
			validated                      int
			nickname, stoveIcon, avatarURL sql.NullString
			fid, totalRecharge             sql.NullInt64
			kingdomID, stoveLevel          sql.NullInt64
		)
		if err := rows.Scan(&acc.ID, &acc.AccountNumber, &validated,
			&nickname, &fid, &kingdomID, &stoveLevel, &stoveIcon, &avatarURL, &totalRecharge); err != nil {
			return nil, err
		}
		acc.Status = roster.StatusIdle
		acc.Validated = validated != 0
		if fid.Valid || nickname.Valid {
			acc.Profile = &roster.Profile{
				FID:            fid.Int64,
				Nickname:       nickname.String,
				KingdomID:      int(kingdomID.Int64),
				StoveLevel:     int(stoveLevel.Int64),
				StoveLevelIcon: stoveIcon.String,
				AvatarURL:      avatarURL.String,
				TotalRecharge:  totalRecharge.Int64,
			}
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
