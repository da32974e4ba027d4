package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-master/internal/models"
)

func TestEmptyStoreReportsNoData(t *testing.T) {
	s := New()
	snap, ok := s.Load()
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestSwapPublishes(t *testing.T) {
	s := New()
	want := &models.Snapshot{Period: models.Period{Start: "2023-01-01", End: "2023-01-31"}}
	s.Swap(want)

	got, ok := s.Load()
	require.True(t, ok)
	assert.Same(t, want, got)
}

func TestConcurrentReadersSeeCompleteSnapshots(t *testing.T) {
	s := New()
	first := &models.Snapshot{Period: models.Period{Start: "2023-01-01", End: "2023-01-31"}}
	second := &models.Snapshot{Period: models.Period{Start: "2023-02-01", End: "2023-02-28"}}
	s.Swap(first)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap, ok := s.Load()
				if !ok || (snap != first && snap != second) {
					t.Error("reader observed a snapshot that was never published")
					return
				}
			}
		}()
	}
	s.Swap(second)
	wg.Wait()
}
