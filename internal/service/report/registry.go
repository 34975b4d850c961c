package report

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
)

// Registry holds the live views by ID. Views idle longer than the TTL are evicted by Sweep.
type Registry struct {
	mu    sync.RWMutex
	views map[string]View
	ttl   time.Duration
	now   func() time.Time

	// onEvict runs after a view is removed, outside the lock
	onEvict func(id string)
	logger  *slog.Logger
}

func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		views:  make(map[string]View),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// OnEvict registers a hook called with the ID of every removed view.
func (r *Registry) OnEvict(fn func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

func (r *Registry) Add(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[v.ID()] = v
}

func (r *Registry) Get(id string) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// Owned returns the view only when p opened it. Views of other callers are reported missing.
func (r *Registry) Owned(p user.Principal, id string) (View, error) {
	v, ok := r.Get(id)
	if !ok || !sameCaller(v.Owner(), p) {
		return nil, report.ErrViewNotFound
	}
	return v, nil
}

func sameCaller(a, b user.Principal) bool {
	return a.Role == b.Role && a.EmployeeID == b.EmployeeID && a.ProjectName == b.ProjectName
}

// Remove closes and drops a view. It reports whether the view existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	hook := r.onEvict
	r.mu.Unlock()

	if !ok {
		return false
	}
	v.Close()
	if hook != nil {
		hook(id)
	}
	return true
}

// Sweep evicts views idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.RLock()
	var idle []string
	for id, v := range r.views {
		if v.LastAccess().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range idle {
		if r.Remove(id) {
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("evicted idle views", "count", removed, "remaining", r.Len())
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
