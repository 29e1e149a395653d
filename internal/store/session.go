// Package store keeps each session's normalized uploads in memory. Nothing
// survives the process; the dashboard is session-scoped by design.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gfranca/leadboard/internal/models"
)

type session struct {
	leads     []models.Lead
	spend     []models.Spend
	tagged    []models.TaggedSpend
	hasTagged bool
	created   time.Time
}

// Snapshot is a copy of one session's tables. Callers own it outright; the
// store's retained slices are never handed out.
type Snapshot struct {
	Leads     []models.Lead
	Spend     []models.Spend
	Tagged    []models.TaggedSpend
	HasTagged bool
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*session)}
}

// Create opens a new session and returns its id.
func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{created: time.Now()}
	return id
}

func (s *SessionStore) get(id string) (*session, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}

// PutLeads replaces the session's lead table. A re-upload supersedes the
// previous file, matching the single-upload-per-kind model of the UI shell.
func (s *SessionStore) PutLeads(id string, rows []models.Lead) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.get(id)
	if !ok {
		return false
	}
	sess.leads = rows
	return true
}

func (s *SessionStore) PutSpend(id string, rows []models.Spend) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.get(id)
	if !ok {
		return false
	}
	sess.spend = rows
	return true
}

func (s *SessionStore) PutTagged(id string, rows []models.TaggedSpend) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.get(id)
	if !ok {
		return false
	}
	sess.tagged = rows
	sess.hasTagged = true
	return true
}

// Snapshot returns copies of the session's tables.
func (s *SessionStore) Snapshot(id string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.get(id)
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		Leads:     append([]models.Lead(nil), sess.leads...),
		Spend:     append([]models.Spend(nil), sess.spend...),
		Tagged:    append([]models.TaggedSpend(nil), sess.tagged...),
		HasTagged: sess.hasTagged,
	}, true
}
