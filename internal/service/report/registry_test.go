package report

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultTestTTL = 30 * time.Minute

func TestRegistry_SweepEvictsIdleViews(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	registry := NewRegistry(defaultTestTTL, nil)
	registry.now = func() time.Time { return base.Add(40 * time.Minute) }

	var evicted []string
	registry.OnEvict(func(id string) { evicted = append(evicted, id) })

	stale := newView(kycReport, viewOptions{ID: "stale", Fetcher: newFakeFetcher(), Now: func() time.Time { return base }})
	fresh := newView(kycReport, viewOptions{ID: "fresh", Fetcher: newFakeFetcher(), Now: func() time.Time { return base.Add(20 * time.Minute) }})
	registry.Add(stale)
	registry.Add(fresh)

	assert.Equal(t, 1, registry.Sweep())
	assert.Equal(t, []string{"stale"}, evicted)
	assert.Equal(t, 1, registry.Len())

	_, ok := registry.Get("stale")
	assert.False(t, ok)
	assert.True(t, stale.closed)
}

func TestRegistry_Owned(t *testing.T) {
	registry := NewRegistry(defaultTestTTL, nil)
	registry.Add(newView(kycReport, viewOptions{ID: "v", Owner: manager, Fetcher: newFakeFetcher()}))

	v, err := registry.Owned(manager, "v")
	require.NoError(t, err)
	assert.Equal(t, "v", v.ID())

	_, err = registry.Owned(coordinator, "v")
	assert.ErrorIs(t, err, report.ErrViewNotFound)

	_, err = registry.Owned(manager, "missing")
	assert.ErrorIs(t, err, report.ErrViewNotFound)
}

func TestRegistry_RemoveUnknown(t *testing.T) {
	registry := NewRegistry(defaultTestTTL, nil)
	assert.False(t, registry.Remove("nope"))
}
