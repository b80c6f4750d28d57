// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/thor"
)

// EventFilter narrows an event subscription. Zero fields match everything.
type EventFilter struct {
	Account *thor.Address
	Module  string
	Name    string
}

type eventReader struct {
	repo   *chain.Repository
	db     *eventdb.EventDB
	filter *EventFilter
	next   uint32
}

func newEventReader(repo *chain.Repository, db *eventdb.EventDB, from uint32, filter *EventFilter) *eventReader {
	return &eventReader{repo: repo, db: db, filter: filter, next: from}
}

func (er *eventReader) Read() ([]any, bool, error) {
	best := er.repo.BestSummary()
	if best == nil || best.Number < er.next {
		return nil, false, nil
	}
	to := best.Number
	if to-er.next >= maxBacktrace {
		to = er.next + maxBacktrace - 1
	}
	evs, err := er.db.Filter(&eventdb.Filter{
		From:    er.next,
		To:      &to,
		Account: er.filter.Account,
		Module:  er.filter.Module,
		Name:    er.filter.Name,
		Order:   eventdb.ASC,
	})
	if err != nil {
		return nil, false, err
	}
	msgs := make([]any, 0, len(evs))
	for _, ev := range evs {
		msgs = append(msgs, ev)
	}
	er.next = to + 1
	return msgs, true, nil
}
