// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/vechain/parastaking/callpool"
)

// msgReader reads the messages available since the last read. The bool reports
// whether anything new was found.
type msgReader interface {
	Read() ([]any, bool, error)
}

// CallMessage is pushed on /subscriptions/call.
type CallMessage struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Origin string          `json:"origin"`
	Status callpool.Status `json:"status"`
}

func convertCallEvent(ev *callpool.CallEvent) *CallMessage {
	return &CallMessage{
		ID:     ev.ID,
		Method: ev.Call.Method,
		Origin: ev.Call.Origin.String(),
		Status: ev.Status,
	}
}
