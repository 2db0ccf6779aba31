package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/observability"
)

// FormRegistry keeps the open authoring forms in memory, keyed by form id.
type FormRegistry struct {
	mu      sync.RWMutex
	forms   map[string]*AssignmentForm
	idleTTL time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewFormRegistry builds a registry that evicts forms idle for longer than idleTTL.
func NewFormRegistry(idleTTL time.Duration, logger zerolog.Logger) *FormRegistry {
	if idleTTL <= 0 {
		idleTTL = 2 * time.Hour
	}
	return &FormRegistry{
		forms:   make(map[string]*AssignmentForm),
		idleTTL: idleTTL,
		logger:  logger.With().Str("component", "form_registry").Logger(),
		now:     time.Now,
	}
}

// Add registers a form.
func (r *FormRegistry) Add(form *AssignmentForm) {
	r.mu.Lock()
	r.forms[form.ID()] = form
	count := len(r.forms)
	r.mu.Unlock()

	observability.OpenAssignmentForms().Set(float64(count))
}

// Get returns the form with the given id.
func (r *FormRegistry) Get(id string) (*AssignmentForm, error) {
	r.mu.RLock()
	form, ok := r.forms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// Remove discards a form. Removing an unknown form returns ErrFormNotFound.
func (r *FormRegistry) Remove(id string) error {
	r.mu.Lock()
	if _, ok := r.forms[id]; !ok {
		r.mu.Unlock()
		return ErrFormNotFound
	}
	delete(r.forms, id)
	count := len(r.forms)
	r.mu.Unlock()

	observability.OpenAssignmentForms().Set(float64(count))
	return nil
}

// Len reports the number of open forms.
func (r *FormRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// Sweep evicts forms idle for longer than the TTL. Forms with a submit in flight are kept.
func (r *FormRegistry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	evicted := 0
	for id, form := range r.forms {
		touchedAt, idle := form.idleSince()
		if idle && touchedAt.Before(cutoff) {
			delete(r.forms, id)
			evicted++
		}
	}
	count := len(r.forms)
	r.mu.Unlock()

	observability.OpenAssignmentForms().Set(float64(count))
	if evicted > 0 {
		r.logger.Info().Int("evicted", evicted).Int("open", count).Msg("expired assignment forms evicted")
	}
	return evicted
}

// Run sweeps the registry every interval until ctx is cancelled.
func (r *FormRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
