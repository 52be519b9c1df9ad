package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// SaveRun writes a run with its chats, messages and media in one
// transaction. IDs assigned by the database are written back into chats.
func (db *DB) SaveRun(run *Run, chats []Chat) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO runs (id, session, mode, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Session, run.Mode, run.Status, run.Error, run.StartedAt, run.FinishedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	chatStmt, err := tx.Prepare(`
		INSERT INTO chats (run_id, position, name, last_message, time_label, unread,
			chat_type, sentiment, length_category, day_class, contains_emoji, priority, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chat: %w", err)
	}
	defer func() { _ = chatStmt.Close() }()

	msgStmt, err := tx.Prepare(`INSERT INTO messages (chat_id, position, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare message: %w", err)
	}
	defer func() { _ = msgStmt.Close() }()

	mediaStmt, err := tx.Prepare(`
		INSERT INTO media (message_id, position, kind, locator, stored_path)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare media: %w", err)
	}
	defer func() { _ = mediaStmt.Close() }()

	for i := range chats {
		c := &chats[i]
		c.RunID = run.ID
		r, err := chatStmt.Exec(run.ID, c.Position, c.Name, c.LastMessage, c.TimeLabel, c.Unread,
			c.ChatType, c.Sentiment, c.LengthCategory, c.DayClass, c.ContainsEmoji, c.Priority, c.State)
		if err != nil {
			return fmt.Errorf("insert chat %d: %w", c.Position, err)
		}
		if c.ID, err = r.LastInsertId(); err != nil {
			return err
		}

		for j := range c.Messages {
			m := &c.Messages[j]
			m.ChatID = c.ID
			r, err := msgStmt.Exec(c.ID, m.Position, m.Body)
			if err != nil {
				return fmt.Errorf("insert message %d of chat %d: %w", m.Position, c.Position, err)
			}
			if m.ID, err = r.LastInsertId(); err != nil {
				return err
			}

			for k := range m.Media {
				a := &m.Media[k]
				a.MessageID = m.ID
				r, err := mediaStmt.Exec(m.ID, a.Position, a.Kind, a.Locator, a.StoredPath)
				if err != nil {
					return fmt.Errorf("insert media: %w", err)
				}
				if a.ID, err = r.LastInsertId(); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	run.ChatCount = len(chats)
	return nil
}

const runColumns = `
	SELECT r.id, r.session, r.mode, r.status, r.error, r.started_at, r.finished_at,
		(SELECT COUNT(*) FROM chats c WHERE c.run_id = r.id)
	FROM runs r`

// ListRuns returns the most recent runs first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(runColumns+` ORDER BY r.started_at DESC, r.id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Session, &r.Mode, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt, &r.ChatCount); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a run by id, or nil when it does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	var r Run
	err := db.QueryRow(runColumns+` WHERE r.id = ?`, id).
		Scan(&r.ID, &r.Session, &r.Mode, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt, &r.ChatCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRun removes a run and everything recorded under it.
func (db *DB) DeleteRun(id string) error {
	_, err := db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	return err
}
