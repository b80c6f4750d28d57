// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package callpool keeps the calls submitted to the node until a block includes them.
package callpool

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pborman/uuid"

	"github.com/vechain/parastaking/cache"
	"github.com/vechain/parastaking/co"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/runtime"
)

var logger = log.WithContext("pkg", "callpool")

type Status string

const (
	StatusPending  Status = "pending"
	StatusIncluded Status = "included"
	StatusReverted Status = "reverted"
	StatusExpired  Status = "expired"
)

// Options options for the call pool.
type Options struct {
	Limit           int
	LimitPerAccount int
	MaxLifetime     time.Duration
	// Results is how many outcomes are remembered.
	Results int
}

// DefaultOptions suits a local node.
func DefaultOptions() Options {
	return Options{
		Limit:           10000,
		LimitPerAccount: 64,
		MaxLifetime:     10 * time.Minute,
		Results:         16384,
	}
}

// Entry is a pending call.
type Entry struct {
	ID    string
	Call  *runtime.Call
	Added time.Time
}

// Result is the known state of a call.
type Result struct {
	ID     string  `json:"id"`
	Status Status  `json:"status"`
	Block  *uint32 `json:"block,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// CallEvent is posted when a call is added or its status changes.
type CallEvent struct {
	ID     string
	Call   *runtime.Call
	Status Status
}

// Pool defines the interface for the call pool.
type Pool interface {
	Add(c *runtime.Call) (string, error)
	Status(id string) (*Result, bool)
	Executables() []*Entry
	Len() int
	SubscribeCallEvent(ch chan *CallEvent) event.Subscription
	Close()
}

// CallPool maintains unprocessed calls, in arrival order.
type CallPool struct {
	options Options

	lock       sync.Mutex
	pending    []*Entry
	perAccount map[string]int
	results    *cache.LRU[string, *Result]

	ctx    context.Context
	cancel func()
	feed   event.Feed
	scope  event.SubscriptionScope
	goes   co.Goes
}

var _ Pool = (*CallPool)(nil)

// New creates a call pool. Close is required to be called at end.
func New(options Options) *CallPool {
	if options.Results <= 0 {
		options.Results = DefaultOptions().Results
	}
	results, err := cache.NewLRU[string, *Result](options.Results)
	if err != nil {
		panic(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &CallPool{
		options:    options,
		perAccount: make(map[string]int),
		results:    results,
		ctx:        ctx,
		cancel:     cancel,
	}
	if options.MaxLifetime > 0 {
		p.goes.Go(p.housekeeping)
	}
	return p
}

func (p *CallPool) housekeeping() {
	logger.Debug("enter housekeeping")
	defer logger.Debug("leave housekeeping")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case now := <-ticker.C:
			if n := p.expire(now); n > 0 {
				logger.Debug("expired calls", "count", n)
			}
		}
	}
}

// expire drops the calls older than MaxLifetime.
func (p *CallPool) expire(now time.Time) int {
	p.lock.Lock()
	var expired []*Entry
	kept := p.pending[:0]
	for _, e := range p.pending {
		if now.Sub(e.Added) > p.options.MaxLifetime {
			expired = append(expired, e)
			p.release(e)
		} else {
			kept = append(kept, e)
		}
	}
	p.pending = kept
	metricPending().Set(int64(len(p.pending)))
	p.lock.Unlock()

	for _, e := range expired {
		p.settle(e, &Result{ID: e.ID, Status: StatusExpired})
	}
	return len(expired)
}

// Close stops the housekeeping and the subscriptions.
func (p *CallPool) Close() {
	p.cancel()
	p.scope.Close()
	p.goes.Wait()
	logger.Debug("closed")
}

func (p *CallPool) SubscribeCallEvent(ch chan *CallEvent) event.Subscription {
	return p.scope.Track(p.feed.Subscribe(ch))
}

// Add queues a call and returns its id. Calls whose method or origin can never
// succeed are refused here rather than reverted in a block.
func (p *CallPool) Add(c *runtime.Call) (string, error) {
	if !runtime.IsMethod(c.Method) {
		return "", errUnknownMethod
	}
	if runtime.IsPrivileged(c.Method) != c.Origin.Root || (!c.Origin.Root && c.Origin.Signer.IsZero()) {
		return "", errBadOrigin
	}
	if c.Amount != nil && c.Amount.Sign() < 0 {
		return "", errNegativeValue
	}

	origin := c.Origin.String()
	e := &Entry{ID: uuid.NewRandom().String(), Call: c, Added: time.Now()}

	p.lock.Lock()
	if p.options.Limit > 0 && len(p.pending) >= p.options.Limit {
		p.lock.Unlock()
		return "", errPoolFull
	}
	if p.options.LimitPerAccount > 0 && p.perAccount[origin] >= p.options.LimitPerAccount {
		p.lock.Unlock()
		return "", errAccountLimit
	}
	p.pending = append(p.pending, e)
	p.perAccount[origin]++
	p.results.Add(e.ID, &Result{ID: e.ID, Status: StatusPending})
	metricPending().Set(int64(len(p.pending)))
	p.lock.Unlock()

	logger.Debug("call added", "id", e.ID, "call", c)
	p.feed.Send(&CallEvent{ID: e.ID, Call: c, Status: StatusPending})
	return e.ID, nil
}

// Executables returns the pending calls in arrival order.
func (p *CallPool) Executables() []*Entry {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]*Entry(nil), p.pending...)
}

// Len returns the count of pending calls.
func (p *CallPool) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.pending)
}

func (p *CallPool) Status(id string) (*Result, bool) {
	return p.results.Get(id)
}

// OnBlock removes the calls a block executed and records their outcome.
// receipts[i] belongs to entries[i].
func (p *CallPool) OnBlock(number uint32, entries []*Entry, receipts []*runtime.Receipt) {
	done := make(map[string]bool, len(entries))
	for _, e := range entries {
		done[e.ID] = true
	}

	p.lock.Lock()
	kept := p.pending[:0]
	for _, e := range p.pending {
		if done[e.ID] {
			p.release(e)
		} else {
			kept = append(kept, e)
		}
	}
	p.pending = kept
	metricPending().Set(int64(len(p.pending)))
	p.lock.Unlock()

	for i, e := range entries {
		r := &Result{ID: e.ID, Status: StatusIncluded, Block: &number}
		if i < len(receipts) && receipts[i].Reverted {
			r.Status = StatusReverted
			r.Reason = receipts[i].Reason
		}
		p.settle(e, r)
	}
}

// release must be called with the lock held.
func (p *CallPool) release(e *Entry) {
	origin := e.Call.Origin.String()
	if p.perAccount[origin] <= 1 {
		delete(p.perAccount, origin)
	} else {
		p.perAccount[origin]--
	}
}

func (p *CallPool) settle(e *Entry, r *Result) {
	p.results.Add(e.ID, r)
	metricResults().AddWithLabel(1, map[string]string{"status": string(r.Status)})
	p.feed.Send(&CallEvent{ID: e.ID, Call: e.Call, Status: r.Status})
}
