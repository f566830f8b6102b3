package store

import "database/sql"

// Metadata keys used by the application.
const (
	MetaLastOpenedQuiz  = "last_opened_quiz"
	MetaDefaultLanguage = "default_language"
)

// SetMetadata upserts a key-value pair in the app_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetLastOpenedQuiz remembers which quiz the builder had open.
func (s *Store) SetLastOpenedQuiz(id string) error {
	return s.SetMetadata(MetaLastOpenedQuiz, id)
}

// LastOpenedQuiz returns the remembered quiz id, or empty string.
func (s *Store) LastOpenedQuiz() (string, error) {
	return s.GetMetadata(MetaLastOpenedQuiz)
}
