// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a rejection of a call. Nothing the call did is kept.
type ErrRevert struct {
	name    string
	message string
}

// New declares a revert. Reverts are compared by identity, so declare each one once.
func New(name, message string) *ErrRevert {
	return &ErrRevert{
		name:    name,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Name returns the stable identifier of the revert, e.g. "CandidateNotFound".
func (e *ErrRevert) Name() string {
	return e.name
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// NameOf returns the name of the revert in err's chain, or "" if there is none.
func NameOf(err error) string {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.name
	}
	return ""
}
