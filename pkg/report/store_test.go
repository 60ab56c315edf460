package report

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAssignsIDAndTime(t *testing.T) {
	s := openTestStore(t)
	r := &Report{VideoName: "derby.mp4", Frames: 120, Team1Share: 0.55, Team2Share: 0.45}

	require.NoError(t, s.Save(r))
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := s.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "derby.mp4", got.VideoName)
	assert.Equal(t, 120, got.Frames)
	assert.InDelta(t, 0.55, got.Team1Share, 1e-9)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	require.NoError(t, s.Save(&Report{ID: "old", VideoName: "a.mp4", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, s.Save(&Report{ID: "new", VideoName: "b.mp4", CreatedAt: now}))

	reports, err := s.List()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "new", reports[0].ID)
	assert.Equal(t, "old", reports[1].ID)
}

func TestGetMissing(t *testing.T) {
	_, err := openTestStore(t).Get("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentSavesToFileDatabase(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	const writers = 16
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Save(&Report{VideoName: fmt.Sprintf("match%d.mp4", i), Frames: i})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	reports, err := s.List()
	require.NoError(t, err)
	assert.Len(t, reports, writers)
}
