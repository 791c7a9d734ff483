package gallery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarouselCyclic(t *testing.T) {
	for n := 1; n <= 6; n++ {
		imgs := make([]ImageRef, n)
		c := NewCarousel(NewCollection(DefaultCap, imgs...), time.Hour)
		for start := 0; start < n; start++ {
			require.True(t, c.JumpTo(start))
			for i := 0; i < n; i++ {
				c.Next()
			}
			idx, _ := c.Current()
			assert.Equal(t, start, idx, "next x%d from %d", n, start)

			for i := 0; i < n; i++ {
				c.Prev()
			}
			idx, _ = c.Current()
			assert.Equal(t, start, idx, "prev x%d from %d", n, start)
		}
	}
}

func TestCarouselTick(t *testing.T) {
	coll := NewCollection(DefaultCap, refs("A", "B", "C")...)
	c := NewCarousel(coll, time.Hour)

	c.Tick()
	c.Tick()
	idx, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "3 / 3", c.Counter())

	c.Tick()
	idx, _ = c.Current()
	assert.Equal(t, 0, idx)

	c.Pause()
	c.Tick()
	idx, _ = c.Current()
	assert.Equal(t, 0, idx)

	// manual navigation still works while paused
	c.Next()
	idx, _ = c.Current()
	assert.Equal(t, 1, idx)
	assert.True(t, c.Paused())

	c.Resume()
	c.Tick()
	idx, _ = c.Current()
	assert.Equal(t, 2, idx)
}

func TestCarouselSingleImageDoesNotMove(t *testing.T) {
	c := NewCarousel(NewCollection(DefaultCap, refs("A")...), time.Hour)
	c.Tick()
	idx, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestCarouselJumpTo(t *testing.T) {
	c := NewCarousel(NewCollection(DefaultCap, refs("A", "B", "C")...), time.Hour)
	assert.True(t, c.JumpTo(2))
	assert.False(t, c.JumpTo(3))
	assert.False(t, c.JumpTo(-1))
	idx, _ := c.Current()
	assert.Equal(t, 2, idx)
}

func TestCarouselEmpty(t *testing.T) {
	coll := NewCollection(DefaultCap)
	c := NewCarousel(coll, 10*time.Millisecond)
	clicked := false
	c.OnClick(func(int) { clicked = true })
	c.Mount(context.Background())
	defer c.Unmount()

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Equal(t, "", c.Counter())

	// let several ticks fire against the empty collection
	time.Sleep(50 * time.Millisecond)
	c.Next()
	c.Prev()
	c.Click()
	assert.False(t, clicked)
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestCarouselClampsAndResets(t *testing.T) {
	coll := NewCollection(DefaultCap, refs("A", "B", "C")...)
	c := NewCarousel(coll, time.Hour)
	c.Mount(context.Background())
	defer c.Unmount()

	require.True(t, c.JumpTo(2))
	coll.RemoveAt(2)
	idx, _ := c.Current()
	assert.Equal(t, 1, idx)

	coll.RemoveAt(0)
	coll.RemoveAt(0)
	_, ok := c.Current()
	assert.False(t, ok)

	coll.Add("D")
	coll.Add("E")
	idx, ok = c.Current()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestCarouselAutoAdvance(t *testing.T) {
	coll := NewCollection(DefaultCap, refs("A", "B", "C")...)
	c := NewCarousel(coll, 5*time.Millisecond)
	c.Mount(context.Background())

	assert.Eventually(t, func() bool {
		idx, _ := c.Current()
		return idx != 0
	}, time.Second, time.Millisecond)

	c.Unmount()
	assert.False(t, c.Mounted())
	idx, _ := c.Current()
	time.Sleep(30 * time.Millisecond)
	after, _ := c.Current()
	assert.Equal(t, idx, after, "timer still running after unmount")

	// unmounting twice is harmless
	c.Unmount()
}

func TestCarouselClick(t *testing.T) {
	c := NewCarousel(NewCollection(DefaultCap, refs("A", "B", "C")...), time.Hour)
	got := -1
	c.OnClick(func(i int) { got = i })
	c.JumpTo(1)
	c.Click()
	assert.Equal(t, 1, got)

	idx, _ := c.Current()
	assert.Equal(t, 1, idx)
}
