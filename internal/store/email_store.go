package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/maildeck/internal/model"
)

// UpsertEmails inserts or replaces a batch of cached messages.
func (s *SQLiteStore) UpsertEmails(ctx context.Context, emails []model.EmailMessage) error {
	if len(emails) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO emails (
			id, sender, recipient, cc,
			subject, body, preview, priority,
			is_read, is_starred, folder,
			received_at, fetched_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range emails {
		folder := e.Folder
		if folder == "" {
			folder = model.FolderInbox
		}

		_, err = stmt.ExecContext(ctx,
			e.ID, e.Sender, e.Recipient, e.CC,
			e.Subject, e.Body, e.Preview, e.Priority,
			e.IsRead, e.IsStarred, string(folder),
			e.ReceivedAt.UTC(), e.FetchedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting email %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// ReplaceEmails replaces the cached messages with a full snapshot in
// one transaction, so a failure partway leaves the previous cache
// intact instead of half-cleared folders.
func (s *SQLiteStore) ReplaceEmails(ctx context.Context, emails []model.EmailMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emails"); err != nil {
		return fmt.Errorf("clearing emails: %w", err)
	}

	const query = `
		INSERT INTO emails (
			id, sender, recipient, cc,
			subject, body, preview, priority,
			is_read, is_starred, folder,
			received_at, fetched_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range emails {
		folder := e.Folder
		if folder == "" {
			folder = model.FolderInbox
		}

		_, err = stmt.ExecContext(ctx,
			e.ID, e.Sender, e.Recipient, e.CC,
			e.Subject, e.Body, e.Preview, e.Priority,
			e.IsRead, e.IsStarred, string(folder),
			e.ReceivedAt.UTC(), e.FetchedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting email %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// GetEmails retrieves cached messages matching the provided filter.
func (s *SQLiteStore) GetEmails(
	ctx context.Context,
	filter EmailFilter,
) ([]model.EmailMessage, error) {
	var conditions []string
	var args []interface{}

	if filter.Folder != nil {
		conditions = append(conditions, "folder = ?")
		args = append(args, string(*filter.Folder))
	}
	if filter.IsRead != nil {
		conditions = append(conditions, "is_read = ?")
		args = append(args, *filter.IsRead)
	}
	if filter.IsStarred != nil {
		conditions = append(conditions, "is_starred = ?")
		args = append(args, *filter.IsStarred)
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(subject LIKE ? OR sender LIKE ? OR body LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM emails"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "received_at"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"sender":      true,
			"subject":     true,
			"priority":    true,
			"received_at": true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var emails []model.EmailMessage
	if err := s.db.SelectContext(ctx, &emails, query, args...); err != nil {
		return nil, fmt.Errorf("querying emails: %w", err)
	}

	return emails, nil
}

// SetEmailFolder moves a cached message between folders.
func (s *SQLiteStore) SetEmailFolder(
	ctx context.Context,
	emailID int64,
	folder model.Folder,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE emails SET folder = ? WHERE id = ?",
		string(folder), emailID,
	)
	if err != nil {
		return fmt.Errorf("moving email %d to %s: %w", emailID, folder, err)
	}
	return nil
}

// SetEmailFlags updates the read/starred flags of a cached message.
func (s *SQLiteStore) SetEmailFlags(
	ctx context.Context,
	emailID int64,
	isRead, isStarred bool,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE emails SET is_read = ?, is_starred = ? WHERE id = ?",
		isRead, isStarred, emailID,
	)
	if err != nil {
		return fmt.Errorf("updating flags for email %d: %w", emailID, err)
	}
	return nil
}

// DeleteEmail removes a cached message permanently.
func (s *SQLiteStore) DeleteEmail(ctx context.Context, emailID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM emails WHERE id = ?", emailID)
	if err != nil {
		return fmt.Errorf("deleting email %d: %w", emailID, err)
	}
	return nil
}

// ClearFolder removes every cached message in a folder.
func (s *SQLiteStore) ClearFolder(ctx context.Context, folder model.Folder) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM emails WHERE folder = ?", string(folder),
	)
	if err != nil {
		return fmt.Errorf("clearing folder %s: %w", folder, err)
	}
	return nil
}
