// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Signal wakes up every waiter on Broadcast. The zero value is ready to use.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

func (s *Signal) chanLocked() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast releases all current waiters.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	close(s.chanLocked())
	s.ch = make(chan struct{})
}

// Waiter observes broadcasts. A broadcast that happens between two calls of C
// is not lost.
type Waiter struct {
	s   *Signal
	ref chan struct{}
}

// NewWaiter returns a waiter that fires on the next broadcast.
func (s *Signal) NewWaiter() *Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Waiter{s: s, ref: s.chanLocked()}
}

// C returns the channel to wait on and arms the waiter for the following broadcast.
func (w *Waiter) C() <-chan struct{} {
	ch := w.ref

	w.s.mu.Lock()
	w.ref = w.s.chanLocked()
	w.s.mu.Unlock()
	return ch
}
