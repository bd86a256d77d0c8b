// Package store persists profiles, reflections and their analyses in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Profile is the owner of reflections.
type Profile struct {
	UserID      string
	DisplayName string
	CreatedAt   time.Time
}

// Reflection is one journal entry.
type Reflection struct {
	ID        string
	UserID    string
	Title     string
	Category  string
	Text      string
	CreatedAt time.Time
}

// Analysis is the persisted scoring of a reflection.
type Analysis struct {
	ReflectionID   string
	Depth          int
	Coherence      int
	Metacognition  int
	Actionable     int
	Overall        float64
	Level          string
	Feedback       string
	Prompts        []string
	WordCount      int
	SentenceCount  int
	ParagraphCount int
	Source         string
	PromptSource   string
	AnalyzedAt     time.Time
}

// Store wraps the database handle. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// dsn builds a SQLite URI. The path is escaped so '?', '#' and '%' in file
// names are not read as URI syntax.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?" + q.Encode()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureProfile creates the profile for userID if it does not exist. It is
// atomic, so concurrent calls for the same user create exactly one row.
// created reports whether this call inserted it.
func (s *Store) EnsureProfile(ctx context.Context, userID, displayName string) (created bool, err error) {
	if strings.TrimSpace(userID) == "" {
		return false, errors.New("user id is required")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles(user_id, display_name, created_at) VALUES(?,?,?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, displayName, s.now().UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("ensure profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure profile rows affected: %w", err)
	}
	return n == 1, nil
}

// GetProfile returns the profile for userID.
func (s *Store) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var (
		p         Profile
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, created_at FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.DisplayName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// CreateReflection inserts r, assigning an ID and CreatedAt when unset. The
// owning profile must exist.
func (s *Store) CreateReflection(ctx context.Context, r Reflection) (Reflection, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reflections(id, user_id, title, category, text, created_at) VALUES(?,?,?,?,?,?)`,
		r.ID, r.UserID, r.Title, r.Category, r.Text, r.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return Reflection{}, fmt.Errorf("insert reflection: %w", err)
	}
	return r, nil
}

// GetReflection returns the reflection with id.
func (s *Store) GetReflection(ctx context.Context, id string) (Reflection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, category, text, created_at FROM reflections WHERE id = ?`, id)
	r, err := scanReflection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Reflection{}, fmt.Errorf("reflection %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Reflection{}, fmt.Errorf("get reflection: %w", err)
	}
	return r, nil
}

// ListPending returns up to limit reflections without an analysis, oldest
// first.
func (s *Store) ListPending(ctx context.Context, limit int) ([]Reflection, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.title, r.category, r.text, r.created_at
		 FROM reflections r
		 LEFT JOIN reflection_analyses a ON a.reflection_id = r.id
		 WHERE a.reflection_id IS NULL
		 ORDER BY r.created_at, r.id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []Reflection
	for rows.Next() {
		r, err := scanReflection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending: %w", err)
	}
	return out, nil
}

// SaveAnalysis inserts or replaces the analysis of a.ReflectionID.
func (s *Store) SaveAnalysis(ctx context.Context, a Analysis) error {
	if a.AnalyzedAt.IsZero() {
		a.AnalyzedAt = s.now()
	}
	prompts, err := json.Marshal(a.Prompts)
	if err != nil {
		return fmt.Errorf("encode prompts: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reflection_analyses(
			reflection_id, depth, coherence, metacognition, actionable, overall, level,
			feedback, prompts_json, word_count, sentence_count, paragraph_count, source, prompt_source, analyzed_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(reflection_id) DO UPDATE SET
			depth = excluded.depth,
			coherence = excluded.coherence,
			metacognition = excluded.metacognition,
			actionable = excluded.actionable,
			overall = excluded.overall,
			level = excluded.level,
			feedback = excluded.feedback,
			prompts_json = excluded.prompts_json,
			word_count = excluded.word_count,
			sentence_count = excluded.sentence_count,
			paragraph_count = excluded.paragraph_count,
			source = excluded.source,
			prompt_source = excluded.prompt_source,
			analyzed_at = excluded.analyzed_at`,
		a.ReflectionID, a.Depth, a.Coherence, a.Metacognition, a.Actionable, a.Overall, a.Level,
		a.Feedback, string(prompts), a.WordCount, a.SentenceCount, a.ParagraphCount, a.Source,
		a.PromptSource, a.AnalyzedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// GetAnalysis returns the analysis of reflectionID.
func (s *Store) GetAnalysis(ctx context.Context, reflectionID string) (Analysis, error) {
	var (
		a          Analysis
		prompts    string
		analyzedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT reflection_id, depth, coherence, metacognition, actionable, overall, level,
			feedback, prompts_json, word_count, sentence_count, paragraph_count, source, prompt_source, analyzed_at
		 FROM reflection_analyses WHERE reflection_id = ?`, reflectionID).
		Scan(&a.ReflectionID, &a.Depth, &a.Coherence, &a.Metacognition, &a.Actionable, &a.Overall,
			&a.Level, &a.Feedback, &prompts, &a.WordCount, &a.SentenceCount, &a.ParagraphCount,
			&a.Source, &a.PromptSource, &analyzedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, fmt.Errorf("analysis %s: %w", reflectionID, ErrNotFound)
	}
	if err != nil {
		return Analysis{}, fmt.Errorf("get analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(prompts), &a.Prompts); err != nil {
		return Analysis{}, fmt.Errorf("decode prompts: %w", err)
	}
	if a.AnalyzedAt, err = parseTime(analyzedAt); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// CountAnalyses returns the number of stored analyses.
func (s *Store) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reflection_analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReflection(row scanner) (Reflection, error) {
	var (
		r         Reflection
		createdAt string
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Category, &r.Text, &createdAt); err != nil {
		return Reflection{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return Reflection{}, err
	}
	r.CreatedAt = t
	return r, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
