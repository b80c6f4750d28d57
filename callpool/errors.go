// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package callpool

import "github.com/pkg/errors"

var (
	errPoolFull      = errors.New("call pool is full")
	errAccountLimit  = errors.New("too many pending calls of the account")
	errUnknownMethod = errors.New("unknown method")
	errBadOrigin     = errors.New("origin does not match the method")
	errNegativeValue = errors.New("negative amount")
)

// IsBadCall reports whether err rejects the call itself, as opposed to the pool being saturated.
func IsBadCall(err error) bool {
	return err == errUnknownMethod || err == errBadOrigin || err == errNegativeValue
}

func IsErrPoolFull(err error) bool {
	return err == errPoolFull || err == errAccountLimit
}
