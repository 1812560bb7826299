package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
)

const messageColumns = `id, item_id, from_user_id, to_user_id, content, read, created_at`

// CreateMessage stores a new unread message.
func (s *SQLite) CreateMessage(ctx context.Context, in model.InsertMessage) (*model.Message, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (item_id, from_user_id, to_user_id, content, read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		in.ItemID, in.FromUserID, in.ToUserID, in.Content, db.FormatTime(s.now()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting message id: %w", err)
	}

	return s.GetMessage(ctx, id)
}

// GetMessage returns a message by ID.
func (s *SQLite) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return msg, nil
}

// GetMessages returns a user's inbox and outbox.
func (s *SQLite) GetMessages(ctx context.Context, userID int64) ([]model.Message, error) {
	return s.listMessages(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE from_user_id = ? OR to_user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID, userID)
}

// GetMessagesByItem returns the thread for an item.
func (s *SQLite) GetMessagesByItem(ctx context.Context, itemID int64) ([]model.Message, error) {
	return s.listMessages(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE item_id = ? ORDER BY created_at DESC, id DESC`, itemID)
}

// MarkMessageAsRead sets the read flag.
func (s *SQLite) MarkMessageAsRead(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("marking message read: %w", err)
	}
	// SQLite counts matched rows, so an already-read message still reports 1.
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking message read: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) listMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

func scanMessage(row scanner) (*model.Message, error) {
	msg := &model.Message{}
	var createdAt string
	if err := row.Scan(&msg.ID, &msg.ItemID, &msg.FromUserID, &msg.ToUserID, &msg.Content, &msg.Read, &createdAt); err != nil {
		return nil, err
	}
	if err := scanTime(createdAt, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return msg, nil
}
