// Package session persists analyzed rows and dashboard selections so a
// later run can resume where the last one stopped.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
	"github.com/KaramelBytes/insightforge-cli/internal/utils"
)

const fileExt = ".json"

// ErrNotFound is returned when no stored session matches.
var ErrNotFound = errors.New("session not found")

// Session is one saved analysis: the rows that were loaded plus the filter
// and chart selection applied to them.
type Session struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Source    string                `json:"source"`
	Sheet     string                `json:"sheet"`
	Columns   []string              `json:"columns"`
	Filters   analysis.FiltersState `json:"filters"`
	Chart     analysis.ChartOptions `json:"chart"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`

	Rows []analysis.Row `json:"-"`
}

// New constructs an unsaved session. Call Store.Save to persist.
func New(name, source, sheet string, rows []analysis.Row) *Session {
	now := time.Now().UTC()
	return &Session{
		Name:      strings.TrimSpace(name),
		Source:    source,
		Sheet:     sheet,
		Columns:   analysis.Columns(rows),
		Chart:     analysis.DefaultChartOptions(),
		CreatedAt: now,
		UpdatedAt: now,
		Rows:      rows,
	}
}

// Summary is the listing form of a session without its rows.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Sheet     string    `json:"sheet"`
	RowCount  int       `json:"row_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps one JSON file per session under Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store { return &Store{Dir: dir} }

func (s *Store) path(id string) string { return filepath.Join(s.Dir, id+fileExt) }

// Save assigns an ID on first save and writes the session atomically.
func (s *Store) Save(sess *Session) error {
	if s.Dir == "" {
		return errors.New("session directory not set")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	sess.UpdatedAt = time.Now().UTC()
	if len(sess.Columns) == 0 {
		sess.Columns = analysis.Columns(sess.Rows)
	}
	data, err := utils.PrettyJSON(record{Session: sess, Cells: encodeRows(sess.Columns, sess.Rows), RowCount: len(sess.Rows)})
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.path(sess.ID), data)
}

// Load finds a session by ID, then by name. Name matches resolve to the most
// recently updated session.
func (s *Store) Load(idOrName string) (*Session, error) {
	if _, err := uuid.Parse(idOrName); err == nil {
		sess, err := s.read(s.path(idOrName))
		if err == nil || !errors.Is(err, ErrNotFound) {
			return sess, err
		}
	}
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, sum := range list {
		if sum.Name == idOrName || sum.ID == idOrName {
			return s.read(s.path(sum.ID))
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrName)
}

// Latest returns the most recently updated session.
func (s *Store) Latest() (*Session, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return s.read(s.path(list[0].ID))
}

// List returns summaries ordered by most recent update first.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	var out []Summary
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}
		var h header
		if err := json.Unmarshal(b, &h); err != nil {
			continue
		}
		out = append(out, Summary{ID: h.ID, Name: h.Name, Source: h.Source, Sheet: h.Sheet, RowCount: h.RowCount, UpdatedAt: h.UpdatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Delete removes a stored session by ID.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) read(path string) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	rec := record{Session: &Session{}}
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	rows, err := decodeRows(rec.Session.Columns, rec.Cells)
	if err != nil {
		return nil, fmt.Errorf("parse session rows: %w", err)
	}
	rec.Session.Rows = rows
	return rec.Session, nil
}

// record is the on-disk layout: session fields plus encoded rows.
type record struct {
	*Session
	RowCount int         `json:"row_count"`
	Cells    []storedRow `json:"rows"`
}

type header struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Sheet     string    `json:"sheet"`
	RowCount  int       `json:"row_count"`
	UpdatedAt time.Time `json:"updated_at"`
}
