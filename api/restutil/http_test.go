// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epochfarm/farm/staking/reject"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no error", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("nope")), http.StatusBadRequest},
		{"forbidden", Forbidden(errors.New("nope")), http.StatusForbidden},
		{"custom status", HTTPError(errors.New("nope"), http.StatusTeapot), http.StatusTeapot},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRejectErrorMapping(t *testing.T) {
	tests := []struct {
		code   reject.Code
		status int
	}{
		{reject.CodeNotFound, http.StatusNotFound},
		{reject.CodeInvalidConfiguration, http.StatusBadRequest},
		{reject.CodeNotOpen, http.StatusConflict},
		{reject.CodeNotClosed, http.StatusConflict},
		{reject.CodeNothingToClaim, http.StatusConflict},
		{reject.CodeIneligibleParticipant, http.StatusForbidden},
		{reject.CodeInsufficientAuthorization, http.StatusForbidden},
		{reject.CodeWalletCapExceeded, http.StatusUnprocessableEntity},
		{reject.CodeLedgerTransferFailed, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return RejectError(reject.New(tt.code, "nope"))
			})
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestParseJSONStrict(t *testing.T) {
	var body struct {
		Amount uint64 `json:"amount"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"amount": 7}`), &body))
	assert.Equal(t, uint64(7), body.Amount)

	err := ParseJSON(strings.NewReader(`{"amount": 7, "extra": true}`), &body)
	assert.Error(t, err)
}
