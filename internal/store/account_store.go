package store

import (
	"context"
	"fmt"

	"github.com/nhle/maildeck/internal/model"
)

// ReplaceAccounts replaces the cached connected-account list wholesale.
// The backend account list is small and authoritative, so a full
// replace is simpler than row-level reconciliation.
func (s *SQLiteStore) ReplaceAccounts(
	ctx context.Context,
	accounts []model.LinkedAccount,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts"); err != nil {
		return fmt.Errorf("clearing accounts: %w", err)
	}

	const query = `
		INSERT INTO accounts (
			id, email_address, provider, status,
			is_active, last_synced_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, a := range accounts {
		_, err := tx.ExecContext(ctx, query,
			a.ID, a.EmailAddress, a.Provider, a.Status,
			a.IsActive, a.LastSyncedAt, a.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting account %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// GetAccounts retrieves the cached connected-account list.
func (s *SQLiteStore) GetAccounts(ctx context.Context) ([]model.LinkedAccount, error) {
	var accounts []model.LinkedAccount
	err := s.db.SelectContext(ctx, &accounts,
		"SELECT * FROM accounts ORDER BY created_at ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	return accounts, nil
}
