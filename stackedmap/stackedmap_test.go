// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/parastaking/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := map[string]string{"foo": "bar"}
	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})

	get := func(key string) string {
		v, _, _ := sm.Get(key)
		return v
	}

	tests := []struct {
		name     string
		f        func()
		depth    int
		putKey   string
		putValue string
		want     string
	}{
		{"source", func() { sm.Push() }, 1, "", "", "bar"},
		{"push and put", func() { sm.Push() }, 2, "foo", "baz", "baz"},
		{"overwrite same level", func() {}, 2, "foo", "baz1", "baz1"},
		{"nested", func() { sm.Push() }, 3, "foo", "qux", "qux"},
		{"pop", func() { sm.Pop() }, 2, "", "", "baz1"},
		{"pop again", func() { sm.Pop() }, 1, "", "", "bar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.f()
			assert.Equal(t, tt.depth, sm.Depth())
			if tt.putKey != "" {
				sm.Put(tt.putKey, tt.putValue)
			}
			assert.Equal(t, tt.want, get("foo"))
		})
	}

	sm.Push()
	sm.Push()
	sm.PopTo(0)
	assert.Equal(t, 0, sm.Depth())
	assert.Equal(t, "bar", get("foo"))
}

func TestStackedMapSourceError(t *testing.T) {
	boom := errors.New("boom")
	sm := stackedmap.New(func(key int) (int, bool, error) {
		return 0, false, boom
	})
	sm.Push()
	sm.Put(1, 10)

	v, ok, err := sm.Get(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	_, _, err = sm.Get(2)
	assert.ErrorIs(t, err, boom)
}

func TestJournal(t *testing.T) {
	sm := stackedmap.New(func(key string) (string, bool, error) {
		return "", false, nil
	})

	kvs := []struct{ k, v string }{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
	}
	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}

	i := 0
	sm.Journal(func(k, v string) bool {
		assert.Equal(t, kvs[i].k, k)
		assert.Equal(t, kvs[i].v, v)
		i++
		return true
	})
	assert.Equal(t, len(kvs), i)

	i = 0
	sm.Journal(func(k, v string) bool {
		i++
		return false
	})
	assert.Equal(t, 1, i, "traversal should abort")

	sm.PopTo(2)
	i = 0
	sm.Journal(func(string, string) bool { i++; return true })
	assert.Equal(t, 2, i)
}
