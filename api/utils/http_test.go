// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/staking"
)

func TestWrapHandlerFunc(t *testing.T) {
	for _, tt := range []struct {
		err    error
		status int
		body   string
	}{
		{nil, http.StatusOK, ""},
		{BadRequest(errors.New("bad")), http.StatusBadRequest, "bad"},
		{NotFound(errors.New("gone")), http.StatusNotFound, "gone"},
		{staking.ErrCandidateNotFound, http.StatusBadRequest, "CandidateNotFound"},
		{errors.New("boom"), http.StatusInternalServerError, "boom"},
	} {
		rec := httptest.NewRecorder()
		WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, tt.status, rec.Code)
		assert.Contains(t, rec.Body.String(), tt.body)
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}

func TestParseRevision(t *testing.T) {
	_, best, err := ParseRevision("best")
	require.NoError(t, err)
	assert.True(t, best)

	n, best, err := ParseRevision("12")
	require.NoError(t, err)
	assert.False(t, best)
	assert.Equal(t, uint32(12), n)

	n, _, err = ParseRevision("0x10")
	require.NoError(t, err)
	assert.Equal(t, uint32(16), n)

	_, _, err = ParseRevision("abc")
	assert.Error(t, err)
}
