// Package store persists quizzes, builder accounts and login sessions in a
// single SQLite database. Quiz documents are stored as their canonical JSON
// serialization, so whatever round-trips through the model round-trips
// through the store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizforge/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		question_count INTEGER NOT NULL DEFAULT 0,
		document TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'author',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS app_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateQuiz stores a new quiz and returns its id.
func (s *Store) CreateQuiz(doc *model.QuizDocument) (string, error) {
	id := uuid.NewString()
	if err := s.saveQuiz(id, doc, true); err != nil {
		return "", err
	}
	return id, nil
}

// SaveQuiz overwrites the stored document for an existing quiz.
func (s *Store) SaveQuiz(id string, doc *model.QuizDocument) error {
	return s.saveQuiz(id, doc, false)
}

func (s *Store) saveQuiz(id string, doc *model.QuizDocument, create bool) error {
	if err := doc.ValidateStructure(); err != nil {
		return fmt.Errorf("validate quiz: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize quiz: %w", err)
	}
	now := time.Now()
	if create {
		_, err = s.db.Exec(
			`INSERT INTO quizzes (id, title, question_count, document, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, doc.Meta.Title, len(doc.Questions), string(data), now, now,
		)
		return err
	}
	res, err := s.db.Exec(
		`UPDATE quizzes SET title = ?, question_count = ?, document = ?, updated_at = ?
		 WHERE id = ?`,
		doc.Meta.Title, len(doc.Questions), string(data), now, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("quiz %s not found", id)
	}
	return nil
}

// GetQuiz loads a quiz document. Returns (nil, nil) when the id is unknown.
func (s *Store) GetQuiz(id string) (*model.QuizDocument, error) {
	var data string
	err := s.db.QueryRow(`SELECT document FROM quizzes WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc model.QuizDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("deserialize quiz %s: %w", id, err)
	}
	return &doc, nil
}

// ListQuizzes returns library entries for every stored quiz, newest first.
func (s *Store) ListQuizzes() ([]model.QuizInfo, error) {
	rows, err := s.db.Query(
		`SELECT id, title, question_count, updated_at FROM quizzes ORDER BY updated_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var infos []model.QuizInfo
	for rows.Next() {
		var info model.QuizInfo
		if err := rows.Scan(&info.ID, &info.Title, &info.Questions, &info.UpdatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// RenameQuiz changes a quiz title in both the listing and the document.
func (s *Store) RenameQuiz(id, title string) error {
	doc, err := s.GetQuiz(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("quiz %s not found", id)
	}
	doc.Meta.Title = title
	return s.SaveQuiz(id, doc)
}

// DeleteQuiz removes a quiz.
func (s *Store) DeleteQuiz(id string) error {
	_, err := s.db.Exec(`DELETE FROM quizzes WHERE id = ?`, id)
	return err
}

// QuizCount returns the number of stored quizzes.
func (s *Store) QuizCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM quizzes`).Scan(&count)
	return count, err
}
