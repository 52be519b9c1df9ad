package store

// ListMessages returns the messages of a chat in thread order with their media.
func (db *DB) ListMessages(chatID int64) ([]Message, error) {
	rows, err := db.Query(`
		SELECT id, chat_id, position, body
		FROM messages
		WHERE chat_id = ?
		ORDER BY position`, chatID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	index := map[int64]int{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Position, &m.Body); err != nil {
			return nil, err
		}
		index[m.ID] = len(msgs)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	mrows, err := db.Query(`
		SELECT a.id, a.message_id, a.position, a.kind, a.locator, a.stored_path
		FROM media a
		JOIN messages m ON m.id = a.message_id
		WHERE m.chat_id = ?
		ORDER BY a.message_id, a.position`, chatID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = mrows.Close() }()

	for mrows.Next() {
		var a Media
		if err := mrows.Scan(&a.ID, &a.MessageID, &a.Position, &a.Kind, &a.Locator, &a.StoredPath); err != nil {
			return nil, err
		}
		if i, ok := index[a.MessageID]; ok {
			msgs[i].Media = append(msgs[i].Media, a)
		}
	}
	return msgs, mrows.Err()
}
