package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHeapRent(t *testing.T) {
	var h Heap

	r := h.Rent(10)
	require.NotNil(t, r)
	assert.Len(t, r.B, 10)

	assert.Len(t, h.Rent(-1).B, 0)

	h.Return(r)
	assert.Nil(t, r.B)
	h.Return(nil)
}

func TestClassIndex(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 0},
		{32, 0},
		{33, 1},
		{64, 1},
		{65, 2},
		{MaxRegionSize, numClasses - 1},
		{MaxRegionSize + 1, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classIndex(tt.n), "classIndex(%d)", tt.n)
	}
}

func TestExactClass(t *testing.T) {
	assert.Equal(t, 0, exactClass(32))
	assert.Equal(t, 1, exactClass(64))
	assert.Equal(t, -1, exactClass(48))
	assert.Equal(t, -1, exactClass(16))
	assert.Equal(t, -1, exactClass(MaxRegionSize*2))
}

func TestSharedRentSizes(t *testing.T) {
	s := NewShared()

	tests := []struct {
		minSize int
		wantLen int
	}{
		{0, 32},
		{5, 32},
		{32, 32},
		{33, 64},
		{1000, 1024},
		{MaxRegionSize + 1, MaxRegionSize + 1},
	}
	for _, tt := range tests {
		r := s.Rent(tt.minSize)
		assert.Len(t, r.B, tt.wantLen, "Rent(%d)", tt.minSize)
		s.Return(r)
	}
}

func TestSharedReturnDropsOversize(t *testing.T) {
	s := NewShared()

	r := s.Rent(MaxRegionSize + 10)
	s.Return(r)
	assert.Nil(t, r.B)

	s.Return(nil)
}

func TestSharedReuseRestoresLength(t *testing.T) {
	s := NewShared()

	r := s.Rent(100)
	r.B = r.B[:3]
	s.Return(r)

	again := s.Rent(100)
	assert.GreaterOrEqual(t, len(again.B), 100)
}

func TestSharedConcurrent(t *testing.T) {
	s := NewShared()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				size := (seed*31 + j*17) % 5000
				r := s.Rent(size)
				if len(r.B) < size {
					t.Errorf("Rent(%d) returned %d bytes", size, len(r.B))
					return
				}
				r.B[0] = byte(j)
				s.Return(r)
			}
		}(i)
	}
	wg.Wait()
}

func TestCountingTracksOutstanding(t *testing.T) {
	c := NewCounting(NewShared())

	a := c.Rent(10)
	b := c.Rent(100)
	assert.Equal(t, Stats{Rents: 2, Outstanding: 2}, c.Stats())

	c.Return(a)
	c.Return(a)
	c.Return(&Region{})
	c.Return(nil)

	assert.Equal(t, Stats{Rents: 2, Returns: 1, Invalid: 2, Outstanding: 1}, c.Stats())

	c.Return(b)
	st := c.Stats()
	assert.Equal(t, st.Rents, st.Returns)
	assert.Zero(t, st.Outstanding)
}

func TestCountingDefaultsToHeap(t *testing.T) {
	c := NewCounting(nil)
	r := c.Rent(7)
	assert.Len(t, r.B, 7)
	c.Return(r)
	assert.Equal(t, int64(1), c.Stats().Returns)
}

func TestLoggedWritesDebugEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogged(Heap{}, zap.New(core))

	r := l.Rent(12)
	l.Return(r)
	l.Return(nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Rented region", entries[0].Message)
	assert.Equal(t, int64(12), entries[0].ContextMap()["size"])
	assert.Equal(t, "Returned region", entries[1].Message)
}

func TestLoggedNilLogger(t *testing.T) {
	l := NewLogged(NewShared(), nil)
	r := l.Rent(1)
	assert.NotNil(t, r)
	l.Return(r)
}
