// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"

	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/thor"
)

type Range struct {
	From *uint32 `json:"from"`
	To   *uint32 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventFilter is the request body of POST /events.
type EventFilter struct {
	Range   *Range            `json:"range"`
	Account *thor.Address     `json:"account"`
	Module  string            `json:"module"`
	Name    string            `json:"name"`
	Options *Options          `json:"options"`
	Order   eventdb.OrderType `json:"order"`
}

func convertFilter(ef *EventFilter) (*eventdb.Filter, error) {
	f := &eventdb.Filter{
		Account: ef.Account,
		Module:  ef.Module,
		Name:    ef.Name,
		Order:   ef.Order,
	}
	switch f.Order {
	case "":
		f.Order = eventdb.ASC
	case eventdb.ASC, eventdb.DESC:
	default:
		return nil, fmt.Errorf("order: unknown %q", ef.Order)
	}
	if r := ef.Range; r != nil {
		if r.From != nil {
			f.From = *r.From
		}
		if r.To != nil {
			if *r.To < f.From {
				return nil, fmt.Errorf("range: to must be greater than or equal to from")
			}
			f.To = r.To
		}
	}
	if ef.Options != nil {
		f.Offset = ef.Options.Offset
		f.Limit = ef.Options.Limit
	}
	return f, nil
}
