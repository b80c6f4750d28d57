// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/thor"
)

type fakeManager struct {
	end   bool
	ended []uint32
	sets  map[uint32][]thor.Address
}

func (m *fakeManager) ShouldEndSession() (bool, error) { return m.end, nil }

func (m *fakeManager) EndSession(index uint32) error {
	m.ended = append(m.ended, index)
	return nil
}

func (m *fakeManager) NewSession(index uint32) ([]thor.Address, error) {
	return m.sets[index], nil
}

func addr(b byte) thor.Address {
	return thor.BytesToAddress([]byte{b})
}

func newSession(t *testing.T) (*Session, *events.Recorder) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rec := events.NewRecorder()
	return New(state.New(db), rec), rec
}

func TestRotate(t *testing.T) {
	s, rec := newSession(t)
	m := &fakeManager{sets: map[uint32][]thor.Address{
		0: {addr(1), addr(2)},
		2: {addr(3), addr(1)},
	}}
	require.NoError(t, s.Genesis(m))

	validators, err := s.Validators()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{addr(1), addr(2)}, validators)

	rotated, err := s.Rotate(m)
	require.NoError(t, err)
	assert.False(t, rotated)
	assert.Empty(t, m.ended)

	m.end = true
	rotated, err = s.Rotate(m)
	require.NoError(t, err)
	assert.True(t, rotated)
	assert.Equal(t, []uint32{0}, m.ended)

	index, err := s.Index()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
	queued, err := s.Queued()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{addr(3), addr(1)}, queued)

	// no candidates for session 3: the queue is kept
	_, err = s.Rotate(m)
	require.NoError(t, err)
	validators, err = s.Validators()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{addr(3), addr(1)}, validators)
	queued, err = s.Queued()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{addr(3), addr(1)}, queued)

	assert.Len(t, rec.Filter(module, "NewSession"), 2)
	assert.Equal(t, "2", rec.Filter(module, "NewSession")[1].Attr("index"))
}

func TestDisable(t *testing.T) {
	s, rec := newSession(t)
	m := &fakeManager{sets: map[uint32][]thor.Address{0: {addr(1), addr(2)}}}
	require.NoError(t, s.Genesis(m))

	ok, err := s.Disable(addr(2))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Disable(addr(2))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Disable(addr(9))
	require.NoError(t, err)
	assert.False(t, ok)

	disabled, err := s.Disabled()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, disabled)
	yes, err := s.IsDisabled(addr(2))
	require.NoError(t, err)
	assert.True(t, yes)
	assert.Len(t, rec.Filter(module, "ValidatorDisabled"), 1)

	m.end = true
	_, err = s.Rotate(m)
	require.NoError(t, err)
	disabled, err = s.Disabled()
	require.NoError(t, err)
	assert.Empty(t, disabled)
}
