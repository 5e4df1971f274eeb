// Package session implements the session manager: per-session JSON
// documents persisted under .mantic/sessions/<id>.json, recording query
// history and file views, and emitting boost candidates the structural
// scorer folds into its session-boost signal (spec §4.8).
package session

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standardbeagle/mantic/internal/errors"
	"github.com/standardbeagle/mantic/internal/types"
)

const sessionsDirName = "sessions"

const (
	viewBoostPerView  = 10.0
	viewBoostCap      = 50.0
	recentViewWindow  = 5 * time.Minute
	recentViewBoost   = 20.0
)

// Manager persists and loads Session documents under root/.mantic/sessions.
// The active session is held in memory; every state change is written in
// full, atomically, with no locking assumed across processes (last-writer-
// wins, per spec §5).
type Manager struct {
	root string
	mu   sync.Mutex
	active *types.Session
}

// NewManager returns a session manager rooted at the scanned repository
// root (sessions live under <root>/.mantic/sessions).
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

func (m *Manager) sessionsDir() string {
	return filepath.Join(m.root, ".mantic", sessionsDirName)
}

func (m *Manager) pathFor(id string) string {
	return filepath.Join(m.sessionsDir(), id+".json")
}

// Start creates a new session, persists it, and makes it the active
// in-memory session.
func (m *Manager) Start(name string, intent types.IntentCategory) (*types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := &types.Session{
		Meta: types.SessionMeta{
			ID:         generateID(now),
			Name:       name,
			Created:    now,
			LastActive: now,
			Intent:     intent,
			Status:     types.SessionActive,
		},
		Files: make(map[string]*types.FileView),
	}

	if err := m.save(s); err != nil {
		return nil, err
	}
	m.active = s
	return s, nil
}

// Load resolves a session by id first, falling back to matching an
// active session by name. It returns (nil, nil) when no match exists,
// per spec §7's "load returns null" component-fallback semantics.
func (m *Manager) Load(idOrName string) (*types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, err := m.readFile(m.pathFor(idOrName)); err == nil {
		m.active = s
		return s, nil
	}

	sessions, err := m.listLocked()
	if err != nil {
		return nil, err
	}
	for _, meta := range sessions {
		if meta.Status == types.SessionActive && meta.Name == idOrName {
			s, err := m.readFile(m.pathFor(meta.ID))
			if err != nil {
				return nil, nil
			}
			m.active = s
			return s, nil
		}
	}
	return nil, nil
}

// RecordQuery appends a query to the active session's history and bumps
// its query counter and last-active timestamp.
func (m *Manager) RecordQuery(query string, filesReturned []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active session")
	}

	m.active.History = append(m.active.History, types.QueryRecord{
		Query:         query,
		Timestamp:     time.Now(),
		FilesReturned: filesReturned,
	})
	m.active.Meta.QueryCount++
	m.active.Meta.LastActive = time.Now()
	return m.save(m.active)
}

// RecordFileViews merges view counts, last-viewed timestamps, first-seen
// relevance scores, and blast radii for the given files into the active
// session. viewCount is monotonically non-decreasing per path (spec
// invariant v).
func (m *Manager) RecordFileViews(views map[string]types.ScoredFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active session")
	}

	now := time.Now()
	for path, sf := range views {
		fv, ok := m.active.Files[path]
		if !ok {
			fv = &types.FileView{RelevanceScore: sf.Score}
			m.active.Files[path] = fv
		}
		fv.ViewCount++
		fv.LastViewed = now
		if sf.Impact != nil {
			fv.BlastRadius = sf.Impact.BlastRadiusBucket
		}
	}
	m.active.Meta.LastActive = now
	return m.save(m.active)
}

// AddInsight appends an advisory note to the active session.
func (m *Manager) AddInsight(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active session")
	}
	m.active.Insights = append(m.active.Insights, text)
	return m.save(m.active)
}

// GetBoostCandidates emits {path, boostFactor, reason} for every viewed
// path in the active session, per spec §4.8's formula:
// boostFactor = min(50, 10*viewCount) + (20 if viewed within 5 minutes).
func (m *Manager) GetBoostCandidates() []types.BoostCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}

	now := time.Now()
	var out []types.BoostCandidate
	for path, fv := range m.active.Files {
		factor := viewBoostPerView * float64(fv.ViewCount)
		if factor > viewBoostCap {
			factor = viewBoostCap
		}
		reason := "prior-view"
		if now.Sub(fv.LastViewed) <= recentViewWindow {
			factor += recentViewBoost
			reason = "recent-view"
		}
		out = append(out, types.BoostCandidate{Path: path, BoostFactor: factor, Reason: reason})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// End flips the active session's status to ended and re-saves it.
func (m *Manager) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active session")
	}
	m.active.Meta.Status = types.SessionEnded
	return m.save(m.active)
}

// List scans the sessions directory and returns session metadata ordered
// by last-active descending.
func (m *Manager) List() ([]types.SessionMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked()
}

func (m *Manager) listLocked() ([]types.SessionMeta, error) {
	entries, err := os.ReadDir(m.sessionsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewComponentError("session", "list", err)
	}

	var metas []types.SessionMeta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		s, err := m.readFile(filepath.Join(m.sessionsDir(), e.Name()))
		if err != nil {
			continue // corrupted session file: skip, per component-level fallback (spec §7)
		}
		metas = append(metas, s.Meta)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].LastActive.After(metas[j].LastActive) })
	return metas, nil
}

// Delete removes a session's persisted file.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.Remove(m.pathFor(id)); err != nil && !os.IsNotExist(err) {
		return errors.NewComponentError("session", "delete", err)
	}
	return nil
}

func (m *Manager) readFile(path string) (*types.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s types.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.NewComponentError("session", "unmarshal", err)
	}
	return &s, nil
}

// save writes the session document atomically via a temp file + rename,
// matching the semantic index's coarse-grained-write convention (spec §5).
func (m *Manager) save(s *types.Session) error {
	dir := m.sessionsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewComponentError("session", "mkdir", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.NewComponentError("session", "marshal", err)
	}

	tmp := m.pathFor(s.Meta.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.NewComponentError("session", "write", err)
	}
	return os.Rename(tmp, m.pathFor(s.Meta.ID))
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func generateID(t time.Time) string {
	suffix := uuid.New().String()
	suffix = strings.ReplaceAll(suffix, "-", "")
	if len(suffix) < 6 {
		// Extremely unlikely; pad with random alphabet characters rather than panic.
		var b strings.Builder
		b.WriteString(suffix)
		for b.Len() < 6 {
			b.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))])
		}
		suffix = b.String()
	}
	return fmt.Sprintf("session-%d-%s", t.UnixMilli(), suffix[:6])
}
