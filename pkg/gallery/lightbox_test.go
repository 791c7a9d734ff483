package gallery

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func current(t *testing.T, l *Lightbox) int {
	t.Helper()
	i, ok := l.Current()
	require.True(t, ok, "lightbox is closed")
	return i
}

func TestLightboxWraps(t *testing.T) {
	base := refs("A", "B", "C", "D")
	n := len(base)
	for i := 0; i < n; i++ {
		l := NewLightbox(NewCollection(DefaultCap, base...), &Keyboard{})
		require.True(t, l.Open(i))
		for j := 0; j < n; j++ {
			l.Next()
		}
		assert.Equal(t, i, current(t, l))

		l.Prev()
		assert.Equal(t, (i-1+n)%n, current(t, l))
	}
}

func TestLightboxOpenRejectsInvalid(t *testing.T) {
	l := NewLightbox(NewCollection(DefaultCap), &Keyboard{})
	assert.False(t, l.Open(0))
	assert.False(t, l.IsOpen())

	l = NewLightbox(NewCollection(DefaultCap, refs("A", "B")...), &Keyboard{})
	assert.False(t, l.Open(2))
	assert.False(t, l.Open(-1))
	require.True(t, l.Open(1))
	assert.False(t, l.Open(5))
	assert.Equal(t, 1, current(t, l), "rejected open changes nothing")
}

func TestLightboxCounter(t *testing.T) {
	l := NewLightbox(NewCollection(DefaultCap, refs("A", "B", "C")...), &Keyboard{})
	assert.Equal(t, "", l.Counter())
	l.Open(1)
	assert.Equal(t, "2 / 3", l.Counter())
	img, ok := l.Image()
	require.True(t, ok)
	assert.Equal(t, ImageRef("B"), img)
}

func TestLightboxKeyboard(t *testing.T) {
	kb := &Keyboard{}
	l := NewLightbox(NewCollection(DefaultCap, refs("A", "B", "C")...), kb)

	kb.Dispatch(KeyArrowRight)
	assert.False(t, l.IsOpen())
	assert.Zero(t, kb.Listeners())

	l.Open(0)
	assert.Equal(t, 1, kb.Listeners())
	l.Open(2)
	assert.Equal(t, 1, kb.Listeners(), "reopening attaches only once")

	kb.Dispatch(KeyArrowRight)
	assert.Equal(t, 0, current(t, l))
	kb.Dispatch(KeyArrowLeft)
	assert.Equal(t, 2, current(t, l))
	kb.Dispatch("Enter")
	assert.Equal(t, 2, current(t, l))

	kb.Dispatch(KeyEscape)
	assert.False(t, l.IsOpen())
	assert.Zero(t, kb.Listeners())
}

func TestLightboxUnmountDetaches(t *testing.T) {
	kb := &Keyboard{}
	coll := NewCollection(DefaultCap, refs("A", "B")...)
	l := NewLightbox(coll, kb)
	l.Open(1)
	l.Unmount()

	assert.Zero(t, kb.Listeners())
	assert.False(t, l.IsOpen())
	assert.False(t, l.Open(0), "unmounted lightbox stays closed")
}

func TestLightboxClosesWhenDisplayedImageRemoved(t *testing.T) {
	for k := 0; k < 3; k++ {
		coll := NewCollection(DefaultCap, refs("A", "B", "C")...)
		l := NewLightbox(coll, &Keyboard{})
		require.True(t, l.Open(k))
		coll.RemoveAt(k)
		assert.False(t, l.IsOpen(), "open at %d", k)
	}
}

func TestLightboxFollowsMutations(t *testing.T) {
	coll := NewCollection(DefaultCap, refs("A", "B", "C", "D")...)
	l := NewLightbox(coll, &Keyboard{})
	require.True(t, l.Open(2)) // C

	coll.RemoveAt(0)
	img, _ := l.Image()
	assert.Equal(t, ImageRef("C"), img)

	coll.RemoveAt(2) // D, after the displayed image
	img, _ = l.Image()
	assert.Equal(t, ImageRef("C"), img)

	coll.PromoteToFront(1) // C itself
	assert.Equal(t, 0, current(t, l))

	coll.Add("E")
	img, _ = l.Image()
	assert.Equal(t, ImageRef("C"), img)
	assert.Equal(t, "2 / 3", l.Counter())
}

func TestLightboxConcurrentMutationsApplyInOrder(t *testing.T) {
	coll := NewCollection(DefaultCap, refs("A", "B", "C", "D")...)
	entered := make(chan struct{})
	release := make(chan struct{})
	// registered ahead of the lightbox, so the removal stalls before the lightbox hears of it
	coll.Observe(func(ch Change) {
		if ch.Op == OpRemove {
			close(entered)
			<-release
		}
	})
	l := NewLightbox(coll, &Keyboard{})
	require.True(t, l.Open(2)) // C

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		coll.RemoveAt(2)
	}()
	<-entered
	go func() {
		defer wg.Done()
		coll.Add("X")
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, refs("X", "A", "B", "D"), coll.Images())
	assert.False(t, l.IsOpen(), "the displayed image was removed")
}

func TestLightboxClosesWhenEmptied(t *testing.T) {
	coll := NewCollection(DefaultCap, refs("A", "B")...)
	l := NewLightbox(coll, &Keyboard{})
	l.Open(0)
	coll.RemoveAt(1)
	assert.True(t, l.IsOpen())
	coll.RemoveAt(0)
	assert.False(t, l.IsOpen())

	l.Next()
	l.Prev()
	assert.False(t, l.IsOpen())
}

func TestLightboxClosesWhenDisplayedImageEvicted(t *testing.T) {
	coll := NewCollection(3, refs("A", "B", "C")...)
	l := NewLightbox(coll, &Keyboard{})
	l.Open(2)
	coll.Add("D")
	assert.False(t, l.IsOpen())
}
