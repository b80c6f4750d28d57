// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"
	"sync"
	"time"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/thor"
)

type BlockIngestion struct {
	BestBlock                   *thor.Bytes32 `json:"bestBlock"`
	BestBlockNumber             uint32        `json:"bestBlockNumber"`
	BestBlockIngestionTimestamp *time.Time    `json:"bestBlockIngestionTimestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
}

// Health tracks when the node last saw a new best block. It is healthy while
// blocks keep coming within two block intervals.
type Health struct {
	lock              sync.RWMutex
	timeBetweenBlocks time.Duration
	newBestBlock      time.Time
	bestBlockID       *thor.Bytes32
	bestBlockNumber   uint32
}

func New(timeBetweenBlocks time.Duration) *Health {
	return &Health{timeBetweenBlocks: timeBetweenBlocks}
}

func (h *Health) NewBestBlock(s *chain.Summary) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.newBestBlock = time.Now()
	id := s.ID
	h.bestBlockID = &id
	h.bestBlockNumber = s.Number
}

// Run records every new best block of repo until ctx is done.
func (h *Health) Run(ctx context.Context, repo *chain.Repository) {
	ticker := repo.NewTicker()
	if best := repo.BestSummary(); best != nil {
		h.NewBestBlock(best)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			h.NewBestBlock(repo.BestSummary())
		}
	}
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	ingestion := &BlockIngestion{
		BestBlock:       h.bestBlockID,
		BestBlockNumber: h.bestBlockNumber,
	}
	if h.bestBlockID != nil {
		t := h.newBestBlock
		ingestion.BestBlockIngestionTimestamp = &t
	}

	healthy := h.bestBlockID != nil && time.Since(h.newBestBlock) <= 2*h.timeBetweenBlocks
	return &Status{
		Healthy:        healthy,
		BlockIngestion: ingestion,
	}
}
