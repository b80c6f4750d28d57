// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node runs the local block producer: it packs the pending calls of the
// pool into a block every interval and commits it.
package node

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/parastaking/callpool"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/packer"
	"github.com/vechain/parastaking/runtime"
)

var logger = log.WithContext("pkg", "node")

// Options for Node.
type Options struct {
	// BlockInterval is the time between blocks, in seconds.
	BlockInterval uint64
	// MaxCalls bounds the calls packed into one block, 0 is unbounded.
	MaxCalls int
	// NTPServer is queried for clock drift. Empty disables the check.
	NTPServer string
}

// DefaultOptions packs a block every 6 seconds.
func DefaultOptions() Options {
	return Options{
		BlockInterval: 6,
		MaxCalls:      1000,
		NTPServer:     "pool.ntp.org",
	}
}

// Node is the standalone block producer.
type Node struct {
	id      string
	repo    *chain.Repository
	eventDB *eventdb.EventDB
	pool    *callpool.CallPool
	packer  *packer.Packer
	options Options
}

// New returns a Node packing on top of the best block of repo.
func New(repo *chain.Repository, eventDB *eventdb.EventDB, pool *callpool.CallPool, cfg runtime.Config, options Options) *Node {
	if options.BlockInterval == 0 {
		options.BlockInterval = DefaultOptions().BlockInterval
	}
	return &Node{
		id:      uuid.New(),
		repo:    repo,
		eventDB: eventDB,
		pool:    pool,
		packer:  packer.New(repo, cfg, options.MaxCalls),
		options: options,
	}
}

// ID identifies this node instance.
func (n *Node) ID() string { return n.id }

// Run packs blocks until ctx is canceled.
func (n *Node) Run(ctx context.Context) error {
	logger.Info("prepared to pack block", "id", n.id, "interval", n.options.BlockInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n.packerLoop(ctx)
		return nil
	})
	if n.options.NTPServer != "" {
		g.Go(func() error {
			n.clockLoop(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (n *Node) packerLoop(ctx context.Context) {
	logger.Debug("enter packer loop")
	defer logger.Debug("leave packer loop")

	ticker := time.NewTicker(time.Duration(n.options.BlockInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping interval packing service......")
			return
		case now := <-ticker.C:
			if _, err := n.PackBlock(uint64(now.Unix())); err != nil {
				logger.Error("failed to pack block", "err", err)
			}
		}
	}
}

// PackBlock packs the executable calls of the pool into a block with the given
// timestamp and commits it. The timestamp is moved past the parent's if needed.
func (n *Node) PackBlock(timestamp uint64) (*packer.Block, error) {
	best := n.repo.BestSummary()
	if timestamp <= best.Timestamp {
		timestamp = best.Timestamp + 1
	}
	flow, err := n.packer.Prepare(best, timestamp)
	if err != nil {
		metricPackedBlocks().AddWithLabel(1, map[string]string{"status": "failed"})
		return nil, err
	}

	var adopted []*callpool.Entry
	for _, e := range n.pool.Executables() {
		if _, err := flow.Adopt(e.Call); err != nil {
			if packer.IsBlockFull(err) {
				break
			}
			metricPackedBlocks().AddWithLabel(1, map[string]string{"status": "failed"})
			return nil, errors.Wrapf(err, "adopt call %s", e.ID)
		}
		adopted = append(adopted, e)
	}

	b, err := flow.Pack()
	if err == nil {
		err = n.commit(b)
	}
	if err != nil {
		metricPackedBlocks().AddWithLabel(1, map[string]string{"status": "failed"})
		return nil, err
	}
	n.pool.OnBlock(b.Summary.Number, adopted, b.Receipts)

	metricPackedBlocks().AddWithLabel(1, map[string]string{"status": "ok"})
	logger.Info("📦 new block packed",
		"number", b.Summary.Number,
		"id", b.Summary.ID,
		"author", b.Summary.Author,
		"calls", len(b.Receipts),
		"events", len(b.Events),
	)
	return b, nil
}

// commit writes the events first so that subscribers woken by the new best block find them.
func (n *Node) commit(b *packer.Block) error {
	number := b.Summary.Number
	if err := n.eventDB.Insert(eventdb.NewEvents(number, b.Summary.Timestamp, b.Events)); err != nil {
		return errors.Wrap(err, "write events")
	}
	if err := n.repo.AddBlock(b.Summary, b.Stage); err != nil {
		if terr := n.eventDB.Truncate(number - 1); terr != nil {
			logger.Warn("failed to drop events of rejected block", "number", number, "err", terr)
		}
		return errors.Wrap(err, "add block")
	}
	return nil
}

func (n *Node) clockLoop(ctx context.Context) {
	const interval = 10 * time.Minute

	n.checkClockOffset()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.checkClockOffset()
		}
	}
}

func (n *Node) checkClockOffset() {
	resp, err := ntp.Query(n.options.NTPServer)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	metricClockOffset().Set(resp.ClockOffset.Milliseconds())
	if clockDrifted(resp.ClockOffset, n.options.BlockInterval) {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}

// clockDrifted reports whether offset exceeds half a block interval, either way.
func clockDrifted(offset time.Duration, blockInterval uint64) bool {
	if offset < 0 {
		offset = -offset
	}
	return offset > time.Duration(blockInterval)*time.Second/2
}
