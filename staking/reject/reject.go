// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reject defines the terminal rejection errors of the staking
// engine. Every precondition violation is one of these; all of them leave
// prior state unchanged and none are retried internally.
package reject

import (
	"fmt"

	"github.com/pkg/errors"
)

type Code uint8

const (
	CodeNotFound Code = iota + 1
	CodeInvalidConfiguration
	CodeNotOpen
	CodeNotClosed
	CodeIneligibleParticipant
	CodeWalletCapExceeded
	CodeNothingToClaim
	CodeInsufficientAuthorization
	CodeLedgerTransferFailed
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not found"
	case CodeInvalidConfiguration:
		return "invalid configuration"
	case CodeNotOpen:
		return "not open"
	case CodeNotClosed:
		return "not closed"
	case CodeIneligibleParticipant:
		return "ineligible participant"
	case CodeWalletCapExceeded:
		return "wallet cap exceeded"
	case CodeNothingToClaim:
		return "nothing to claim"
	case CodeInsufficientAuthorization:
		return "insufficient authorization"
	case CodeLedgerTransferFailed:
		return "ledger transfer failed"
	default:
		return "unknown"
	}
}

// Rejection is a terminal, synchronous operation failure.
type Rejection struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Rejection {
	return &Rejection{
		code:    code,
		message: message,
	}
}

func Newf(code Code, format string, args ...any) *Rejection {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code to an underlying failure, typically one propagated
// from the external value-transfer ledger.
func Wrap(cause error, code Code, message string) *Rejection {
	return &Rejection{
		code:    code,
		message: message,
		cause:   cause,
	}
}

func (r *Rejection) Error() string {
	if r.cause != nil {
		return r.message + ": " + r.cause.Error()
	}
	return r.message
}

func (r *Rejection) Code() Code {
	return r.code
}

func (r *Rejection) Unwrap() error {
	return r.cause
}

// Is reports whether err is a Rejection carrying the given code.
func Is(err error, code Code) bool {
	var r *Rejection
	if !errors.As(err, &r) {
		return false
	}
	return r.code == code
}

// IsRejection reports whether err is a Rejection of any code.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	var r *Rejection
	return errors.As(err, &r)
}
