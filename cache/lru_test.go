// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[int, string](0)
	assert.Error(t, err)

	c, err := NewLRU[int, string](2)
	require.NoError(t, err)

	c.Add(1, "a")
	c.Add(2, "b")
	c.Add(3, "c")
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get(1)
	assert.False(t, ok, "oldest entry evicted")
	v, ok := c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, hit, miss := c.Stats().Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	c.Remove(3)
	_, ok = c.Get(3)
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestLRUGetOrLoad(t *testing.T) {
	c, err := NewLRU[string, int](8)
	require.NoError(t, err)

	loads := 0
	load := func(k string) (int, error) {
		loads++
		if k == "bad" {
			return 0, errors.New("boom")
		}
		return len(k), nil
	}

	v, err := c.GetOrLoad("abc", load)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = c.GetOrLoad("abc", load)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("bad", load)
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok)
}
