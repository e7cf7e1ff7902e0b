package store

import (
	"context"
	"sort"
	"sync"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

// Memory is the in-process Store used by tests and as the dev backend when no
// Postgres DSN is configured. It favors clarity over performance.
type Memory struct {
	mu          sync.RWMutex
	postings    map[string]models.Posting
	apps        map[string]models.Application
	transitions map[string][]models.TransitionRecord
	nextSeq     int64
}

func NewMemory() *Memory {
	return &Memory{
		postings:    make(map[string]models.Posting),
		apps:        make(map[string]models.Application),
		transitions: make(map[string][]models.TransitionRecord),
	}
}

func (m *Memory) GetApplication(_ context.Context, id string) (models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, workflow.ErrNotFound
	}
	return app, nil
}

func (m *Memory) GetPosting(_ context.Context, id string) (models.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.postings[id]
	if !ok {
		return models.Posting{}, workflow.ErrNotFound
	}
	return p, nil
}

func (m *Memory) FindApplication(_ context.Context, applicantID, postingID string) (models.Application, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, app := range m.apps {
		if app.ApplicantID == applicantID && app.PostingID == postingID {
			return app, true, nil
		}
	}
	return models.Application{}, false, nil
}

func (m *Memory) CreateApplication(_ context.Context, app models.Application, initial models.TransitionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.ApplicantID == app.ApplicantID && existing.PostingID == app.PostingID {
			return workflow.ErrConflict
		}
	}
	m.nextSeq++
	initial.Seq = m.nextSeq
	m.apps[app.ID] = app
	m.transitions[app.ID] = append(m.transitions[app.ID], initial)
	return nil
}

func (m *Memory) SaveApplication(_ context.Context, app models.Application, rec models.TransitionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.ID]; !ok {
		return workflow.ErrNotFound
	}
	m.nextSeq++
	rec.Seq = m.nextSeq
	m.apps[app.ID] = app
	m.transitions[app.ID] = append(m.transitions[app.ID], rec)
	return nil
}

func (m *Memory) ListApplications(_ context.Context, f Filter) ([]models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Application
	for _, app := range m.apps {
		if !m.matches(app, f) {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].AppliedAt.Before(out[j].AppliedAt)
	})
	return out, nil
}

func (m *Memory) ListTransitions(_ context.Context, applicationID string) ([]models.TransitionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.transitions[applicationID]
	out := make([]models.TransitionRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (m *Memory) CountByStage(_ context.Context, f Filter) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, app := range m.apps {
		if !m.matches(app, f) {
			continue
		}
		counts[app.Stage]++
	}
	return counts, nil
}

func (m *Memory) CreatePosting(_ context.Context, p models.Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings[p.ID] = p
	return nil
}

func (m *Memory) ListPostings(_ context.Context) ([]models.Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Posting, 0, len(m.postings))
	for _, p := range m.postings {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// matches assumes the read lock is held (Technical requires a posting lookup).
func (m *Memory) matches(app models.Application, f Filter) bool {
	if f.ApplicantID != "" && app.ApplicantID != f.ApplicantID {
		return false
	}
	if f.Stage != "" && app.Stage != f.Stage {
		return false
	}
	if f.Technical != nil {
		p, ok := m.postings[app.PostingID]
		if !ok || p.Technical != *f.Technical {
			return false
		}
	}
	return true
}
