// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package session rotates the validator set: the active validators of the current
// session, the queued set of the next one and the validators disabled meanwhile.
package session

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/parastaking/events"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/metrics"
	"github.com/vechain/parastaking/state"
	"github.com/vechain/parastaking/storage"
	"github.com/vechain/parastaking/thor"
)

const module = "session"

var (
	logger = log.WithContext("pkg", "session")

	// Address is the account the session storage lives under.
	Address = thor.AccountFromID("session")

	slotIndex      = storage.Slot("index")
	slotValidators = storage.Slot("validators")
	slotQueued     = storage.Slot("queued")
	slotDisabled   = storage.Slot("disabled")

	metricIndex      = metrics.LazyLoadGauge("session_index")
	metricValidators = metrics.LazyLoadGauge("session_validators_count")
)

// Manager decides when sessions end and who validates the next one.
type Manager interface {
	ShouldEndSession() (bool, error)
	EndSession(index uint32) error
	NewSession(index uint32) ([]thor.Address, error)
}

// Session is the validator rotation over the state of one block.
type Session struct {
	events *events.Recorder

	index      *storage.Raw[uint32]
	validators *storage.Raw[[]thor.Address]
	queued     *storage.Raw[[]thor.Address]
	disabled   *storage.Raw[[]uint32]
}

// New creates the rotation over st. Events go to rec, which may be nil.
func New(st *state.State, rec *events.Recorder) *Session {
	sctx := storage.NewContext(Address, st)
	return &Session{
		events:     rec,
		index:      storage.NewRaw[uint32](sctx, slotIndex),
		validators: storage.NewRaw[[]thor.Address](sctx, slotValidators),
		queued:     storage.NewRaw[[]thor.Address](sctx, slotQueued),
		disabled:   storage.NewRaw[[]uint32](sctx, slotDisabled),
	}
}

func (s *Session) emit(ev *events.Event) {
	if s.events != nil {
		s.events.Emit(ev)
	}
}

// Genesis installs session 0. The first set is both active and queued.
func (s *Session) Genesis(m Manager) error {
	validators, err := m.NewSession(0)
	if err != nil {
		return errors.Wrap(err, "genesis session")
	}
	if err := s.index.Set(0); err != nil {
		return err
	}
	if err := s.validators.Set(validators); err != nil {
		return err
	}
	if err := s.queued.Set(validators); err != nil {
		return err
	}
	metricValidators().Set(int64(len(validators)))
	logger.Debug("genesis session", "validators", len(validators))
	return nil
}

// Rotate ends the current session when m says so: the queued set becomes active,
// disabled validators are re-enabled and the next set is queued. A manager without
// candidates for the next session keeps the current queue.
func (s *Session) Rotate(m Manager) (bool, error) {
	end, err := m.ShouldEndSession()
	if err != nil || !end {
		return false, err
	}
	index, err := s.index.Get()
	if err != nil {
		return false, err
	}
	if err := m.EndSession(index); err != nil {
		return false, errors.Wrapf(err, "end session %d", index)
	}

	index++
	queued, err := s.queued.Get()
	if err != nil {
		return false, err
	}
	if err := s.index.Set(index); err != nil {
		return false, err
	}
	if err := s.validators.Set(queued); err != nil {
		return false, err
	}
	s.disabled.Delete()

	next, err := m.NewSession(index + 1)
	if err != nil {
		return false, errors.Wrapf(err, "new session %d", index+1)
	}
	if next != nil {
		if err := s.queued.Set(next); err != nil {
			return false, err
		}
	}

	s.emit(events.New(module, "NewSession").With("index", index))
	metricIndex().Set(int64(index))
	metricValidators().Set(int64(len(queued)))
	logger.Info("new session", "index", index, "validators", len(queued))
	return true, nil
}

// Disable marks an active validator disabled until the end of the session.
// It returns false when id is not active or already disabled.
func (s *Session) Disable(id thor.Address) (bool, error) {
	validators, err := s.validators.Get()
	if err != nil {
		return false, err
	}
	i := slices.Index(validators, id)
	if i < 0 {
		return false, nil
	}
	disabled, err := s.disabled.Get()
	if err != nil {
		return false, err
	}
	if slices.Contains(disabled, uint32(i)) {
		return false, nil
	}
	if err := s.disabled.Set(append(disabled, uint32(i))); err != nil {
		return false, err
	}
	s.emit(events.New(module, "ValidatorDisabled", id).With("index", uint32(i)))
	logger.Info("validator disabled", "id", id, "index", i)
	return true, nil
}

func (s *Session) Index() (uint32, error) {
	return s.index.Get()
}

func (s *Session) Validators() ([]thor.Address, error) {
	return s.validators.Get()
}

func (s *Session) Queued() ([]thor.Address, error) {
	return s.queued.Get()
}

// Disabled returns the indices, in the active set, of the disabled validators.
func (s *Session) Disabled() ([]uint32, error) {
	return s.disabled.Get()
}

// IsDisabled reports whether id is active and disabled.
func (s *Session) IsDisabled(id thor.Address) (bool, error) {
	validators, err := s.validators.Get()
	if err != nil {
		return false, err
	}
	i := slices.Index(validators, id)
	if i < 0 {
		return false, nil
	}
	disabled, err := s.disabled.Get()
	if err != nil {
		return false, err
	}
	return slices.Contains(disabled, uint32(i)), nil
}
