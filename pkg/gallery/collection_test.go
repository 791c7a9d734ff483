package gallery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(names ...string) []ImageRef {
	out := []ImageRef{}
	for _, n := range names {
		out = append(out, ImageRef(n))
	}
	return out
}

func TestCollectionScenario(t *testing.T) {
	c := NewCollection(DefaultCap, refs("A", "B", "C")...)

	c.Add("D")
	assert.Equal(t, refs("D", "A", "B", "C"), c.Images())

	require.True(t, c.PromoteToFront(3))
	assert.Equal(t, refs("C", "D", "A", "B"), c.Images())

	require.True(t, c.RemoveAt(3))
	assert.Equal(t, refs("C", "D", "A"), c.Images())
}

func TestAddEvictsOldest(t *testing.T) {
	c := NewCollection(DefaultCap)
	for i := 0; i < 40; i++ {
		c.Add(ImageRef(fmt.Sprintf("img-%d", i)))
		assert.LessOrEqual(t, c.Len(), DefaultCap)
	}

	require.Equal(t, DefaultCap, c.Len())
	first, _ := c.At(0)
	last, _ := c.At(DefaultCap - 1)
	assert.Equal(t, ImageRef("img-39"), first)
	assert.Equal(t, ImageRef("img-16"), last)
}

func TestNewCollectionTruncatesSeed(t *testing.T) {
	c := NewCollection(2, refs("A", "B", "C")...)
	assert.Equal(t, refs("A", "B"), c.Images())
	assert.Equal(t, 2, c.Cap())
}

func TestPromoteToFront(t *testing.T) {
	base := refs("A", "B", "C", "D", "E")
	for i := range base {
		t.Run(fmt.Sprintf("index %d", i), func(t *testing.T) {
			c := NewCollection(DefaultCap, base...)
			c.PromoteToFront(i)

			cover, ok := c.Cover()
			require.True(t, ok)
			assert.Equal(t, base[i], cover)

			rest := []ImageRef{}
			for j, r := range base {
				if j != i {
					rest = append(rest, r)
				}
			}
			assert.Equal(t, rest, c.Images()[1:])
		})
	}
}

func TestRemoveAt(t *testing.T) {
	base := refs("A", "B", "C", "D")
	for i := range base {
		c := NewCollection(DefaultCap, base...)
		require.True(t, c.RemoveAt(i))
		assert.Equal(t, len(base)-1, c.Len())

		want := append(append([]ImageRef{}, base[:i]...), base[i+1:]...)
		assert.Equal(t, want, c.Images())
	}
}

func TestInvalidIndexesAreNoops(t *testing.T) {
	c := NewCollection(DefaultCap, refs("A", "B")...)
	changes := 0
	c.Observe(func(Change) { changes++ })

	assert.False(t, c.RemoveAt(-1))
	assert.False(t, c.RemoveAt(2))
	assert.False(t, c.PromoteToFront(5))
	assert.False(t, c.PromoteToFront(0))
	assert.Equal(t, refs("A", "B"), c.Images())
	assert.Zero(t, changes)
}

func TestObserve(t *testing.T) {
	c := NewCollection(DefaultCap, refs("A", "B", "C")...)
	var got []Change
	cancel := c.Observe(func(ch Change) {
		// observers may read the collection
		assert.Equal(t, ch.Len, c.Len())
		got = append(got, ch)
	})

	c.Add("D")
	c.PromoteToFront(2)
	c.RemoveAt(1)
	cancel()
	cancel()
	c.Add("E")

	assert.Equal(t, []Change{
		{Op: OpAdd, Index: 0, Len: 4},
		{Op: OpPromote, Index: 2, Len: 4},
		{Op: OpRemove, Index: 1, Len: 3},
	}, got)
}

func TestImageRefInline(t *testing.T) {
	assert.True(t, ImageRef("data:image/png;base64,AAAA").Inline())
	assert.False(t, ImageRef("https://images.example.com/cabin.jpg").Inline())
}
