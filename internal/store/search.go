package store

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchMessages returns archived messages whose body contains query,
// ignoring ASCII case, newest run first. An empty query matches nothing.
func (db *DB) SearchMessages(query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT c.run_id, c.name, m.id, m.chat_id, m.position, m.body
		FROM messages m
		JOIN chats c ON c.id = m.chat_id
		JOIN runs r ON r.id = c.run_id
		WHERE m.body LIKE ? ESCAPE '\'
		ORDER BY r.started_at DESC, c.position, m.position
		LIMIT ?`, "%"+likeEscaper.Replace(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.RunID, &r.ChatName,
			&r.Message.ID, &r.Message.ChatID, &r.Message.Position, &r.Message.Body); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
