// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events records the events emitted by modules while a block executes.
package events

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/vechain/parastaking/thor"
)

// Event is a module event. Accounts are the indexed participants, attrs carry the payload
// rendered as strings.
type Event struct {
	Module   string            `json:"module"`
	Name     string            `json:"name"`
	Accounts []thor.Address    `json:"accounts"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// New creates an event.
func New(module, name string, accounts ...thor.Address) *Event {
	return &Event{
		Module:   module,
		Name:     name,
		Accounts: accounts,
	}
}

// With sets an attribute, returning the event for chaining.
func (e *Event) With(key string, value any) *Event {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *big.Int:
		s = v.String()
	case uint32:
		s = strconv.FormatUint(uint64(v), 10)
	case uint64:
		s = strconv.FormatUint(v, 10)
	case int:
		s = strconv.Itoa(v)
	case bool:
		s = strconv.FormatBool(v)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	e.Attrs[key] = s
	return e
}

// Attr returns an attribute value.
func (e *Event) Attr(key string) string {
	return e.Attrs[key]
}

func (e *Event) String() string {
	return fmt.Sprintf("%s.%s%v%v", e.Module, e.Name, e.Accounts, e.Attrs)
}

// Recorder buffers events. Truncate drops events of a reverted operation.
type Recorder struct {
	events []*Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(ev *Event) {
	r.events = append(r.events, ev)
}

// Len returns the number of buffered events, usable as a truncation mark.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Truncate drops events after mark n.
func (r *Recorder) Truncate(n int) {
	if n < len(r.events) {
		r.events = r.events[:n]
	}
}

// Events returns the buffered events.
func (r *Recorder) Events() []*Event {
	return r.events
}

// Take returns and clears the buffered events.
func (r *Recorder) Take() []*Event {
	evs := r.events
	r.events = nil
	return evs
}

// Filter returns the buffered events matching module and name. Empty name matches all.
func (r *Recorder) Filter(module, name string) []*Event {
	var out []*Event
	for _, ev := range r.events {
		if ev.Module == module && (name == "" || ev.Name == name) {
			out = append(out, ev)
		}
	}
	return out
}
