package ese

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageCache_GetPutRoundTrip(t *testing.T) {
	c := newPageCache(4, 1)
	p := Page{number: 7}
	_, ok := c.get(PageNumber(7))
	require.False(t, ok)

	c.put(PageNumber(7), p)
	got, ok := c.get(PageNumber(7))
	require.True(t, ok)
	require.Equal(t, PageNumber(7), got.number)
}

func TestPageCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newPageCache(2, 1)
	c.put(PageNumber(1), Page{number: 1})
	c.put(PageNumber(2), Page{number: 2})
	// touch 1 so 2 becomes the LRU victim
	_, _ = c.get(PageNumber(1))
	c.put(PageNumber(3), Page{number: 3})

	_, ok := c.get(PageNumber(2))
	require.False(t, ok, "page 2 should have been evicted")
	_, ok = c.get(PageNumber(1))
	require.True(t, ok)
	_, ok = c.get(PageNumber(3))
	require.True(t, ok)
}

func TestPageCache_ZeroCapacityDisablesCaching(t *testing.T) {
	c := newPageCache(0, 1)
	c.put(PageNumber(1), Page{number: 1})
	_, ok := c.get(PageNumber(1))
	require.False(t, ok)
}

func TestPageCache_ShardsDistributeByPageNumber(t *testing.T) {
	c := newPageCache(8, 4)
	for i := uint32(0); i < 8; i++ {
		c.put(PageNumber(i), Page{number: PageNumber(i)})
	}
	require.Equal(t, 8, c.len())
	for i := uint32(0); i < 8; i++ {
		got, ok := c.get(PageNumber(i))
		require.True(t, ok)
		require.Equal(t, PageNumber(i), got.number)
	}
}
