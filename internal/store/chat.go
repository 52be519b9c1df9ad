package store

// ListChats returns the chats of a run in harvest order, without messages.
func (db *DB) ListChats(runID string) ([]Chat, error) {
	rows, err := db.Query(`
		SELECT id, run_id, position, name, last_message, time_label, unread,
			chat_type, sentiment, length_category, day_class, contains_emoji, priority, state
		FROM chats
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ID, &c.RunID, &c.Position, &c.Name, &c.LastMessage, &c.TimeLabel, &c.Unread,
			&c.ChatType, &c.Sentiment, &c.LengthCategory, &c.DayClass, &c.ContainsEmoji, &c.Priority, &c.State); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// LoadRun returns the chats of a run with their messages and media attached.
func (db *DB) LoadRun(runID string) ([]Chat, error) {
	chats, err := db.ListChats(runID)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Messages, err = db.ListMessages(chats[i].ID); err != nil {
			return nil, err
		}
	}
	return chats, nil
}
