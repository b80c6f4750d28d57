// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/vechain/parastaking/api/blocks"
	"github.com/vechain/parastaking/chain"
)

// maxBacktrace bounds how many blocks one read returns.
const maxBacktrace = 1000

type blockReader struct {
	repo *chain.Repository
	next uint32
}

func newBlockReader(repo *chain.Repository, from uint32) *blockReader {
	return &blockReader{repo: repo, next: from}
}

func (br *blockReader) Read() ([]any, bool, error) {
	best := br.repo.BestSummary()
	if best == nil || best.Number < br.next {
		return nil, false, nil
	}
	to := best.Number
	if to-br.next >= maxBacktrace {
		to = br.next + maxBacktrace - 1
	}
	summaries, err := br.repo.Summaries(br.next, to)
	if err != nil {
		return nil, false, err
	}
	msgs := make([]any, 0, len(summaries))
	for _, s := range summaries {
		msgs = append(msgs, blocks.NewJSONBlockSummary(s))
	}
	br.next = to + 1
	return msgs, true, nil
}
