package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"schoolcal/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the template-week snapshot and the markbook (subjects and
// exam marks) in a local SQLite database.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
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
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS week_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			snapshot TEXT NOT NULL,
			imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS subjects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			colour TEXT DEFAULT '',
			teacher TEXT DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS marks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			score REAL NOT NULL,
			max_score REAL NOT NULL,
			weight REAL DEFAULT 1,
			taken_on DATE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_marks_subject_id ON marks(subject_id)`,
		`CREATE INDEX IF NOT EXISTS idx_marks_taken_on ON marks(taken_on)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Ignore "duplicate column" errors for future ALTER TABLE steps.
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("exec migration: %w", err)
			}
		}
	}
	return nil
}

// === Template week ===

// SaveWeek replaces the persisted template week wholesale. The week is
// stored in its JSON snapshot form so the shape matches what the UI
// exports and re-imports.
func (s *Store) SaveWeek(week model.WeekData) error {
	data, err := json.Marshal(week.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO week_snapshot (id, snapshot, imported_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, imported_at = excluded.imported_at`,
		string(data), time.Now(),
	)
	return err
}

// LoadWeek returns the persisted template week, or (nil, nil) when no
// schedule has been imported yet.
func (s *Store) LoadWeek() (*model.WeekData, error) {
	var raw string
	err := s.db.QueryRow(`SELECT snapshot FROM week_snapshot WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap model.WeekSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	week, err := model.WeekFromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("rebuild week: %w", err)
	}
	return &week, nil
}

// === Subjects ===

// UpsertSubject creates the subject if its name is new and returns the
// stored row either way. Import uses this to register every summary seen.
func (s *Store) UpsertSubject(name string) (*model.Subject, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, fmt.Errorf("subject name is empty")
	}

	if _, err := s.db.Exec(
		`INSERT INTO subjects (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name,
	); err != nil {
		return nil, err
	}
	return s.GetSubjectByName(name)
}

func (s *Store) GetSubjectByName(name string) (*model.Subject, error) {
	sub := &model.Subject{}
	err := s.db.QueryRow(
		`SELECT id, name, colour, teacher FROM subjects WHERE name = ?`, name,
	).Scan(&sub.ID, &sub.Name, &sub.Colour, &sub.Teacher)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (s *Store) GetSubject(id int64) (*model.Subject, error) {
	sub := &model.Subject{}
	err := s.db.QueryRow(
		`SELECT id, name, colour, teacher FROM subjects WHERE id = ?`, id,
	).Scan(&sub.ID, &sub.Name, &sub.Colour, &sub.Teacher)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (s *Store) ListSubjects() ([]*model.Subject, error) {
	rows, err := s.db.Query(`SELECT id, name, colour, teacher FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []*model.Subject
	for rows.Next() {
		sub := &model.Subject{}
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Colour, &sub.Teacher); err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

func (s *Store) UpdateSubject(sub *model.Subject) error {
	_, err := s.db.Exec(
		`UPDATE subjects SET name = ?, colour = ?, teacher = ? WHERE id = ?`,
		sub.Name, sub.Colour, sub.Teacher, sub.ID,
	)
	return err
}

func (s *Store) DeleteSubject(id int64) error {
	_, err := s.db.Exec(`DELETE FROM subjects WHERE id = ?`, id)
	return err
}

// === Marks ===

func (s *Store) CreateMark(m *model.Mark) error {
	if m.MaxScore <= 0 {
		return fmt.Errorf("max score must be positive")
	}
	if m.Weight <= 0 {
		m.Weight = 1
	}

	res, err := s.db.Exec(
		`INSERT INTO marks (subject_id, title, score, max_score, weight, taken_on)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.SubjectID, m.Title, m.Score, m.MaxScore, m.Weight, m.TakenOn,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	m.ID = id
	m.CreatedAt = time.Now()
	return nil
}

func (s *Store) ListMarksBySubject(subjectID int64) ([]*model.Mark, error) {
	rows, err := s.db.Query(
		`SELECT id, subject_id, title, score, max_score, weight, taken_on, created_at
		 FROM marks WHERE subject_id = ? ORDER BY taken_on, id`,
		subjectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []*model.Mark
	for rows.Next() {
		m := &model.Mark{}
		if err := rows.Scan(&m.ID, &m.SubjectID, &m.Title, &m.Score, &m.MaxScore, &m.Weight, &m.TakenOn, &m.CreatedAt); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

func (s *Store) DeleteMark(id int64) error {
	_, err := s.db.Exec(`DELETE FROM marks WHERE id = ?`, id)
	return err
}

// SubjectSummaries returns per-subject mark aggregates for the markbook
// overview. The mean is weighted by each mark's weight.
func (s *Store) SubjectSummaries() ([]model.SubjectSummary, error) {
	subjects, err := s.ListSubjects()
	if err != nil {
		return nil, err
	}

	summaries := make([]model.SubjectSummary, 0, len(subjects))
	for _, sub := range subjects {
		marks, err := s.ListMarksBySubject(sub.ID)
		if err != nil {
			return nil, err
		}

		var weightSum, weighted float64
		for _, m := range marks {
			weightSum += m.Weight
			weighted += m.Percent() * m.Weight
		}

		summary := model.SubjectSummary{Subject: *sub, MarkCount: len(marks)}
		if weightSum > 0 {
			summary.MeanPercent = weighted / weightSum
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
