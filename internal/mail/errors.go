// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
)

// Delivery error codes. Each names a distinct failure of SendArchive.
const (
	ErrorCodeArchiveMissing   = "ARCHIVE_MISSING"
	ErrorCodeAuthFailed       = "AUTH_FAILED"
	ErrorCodeConnectionFailed = "CONNECTION_FAILED"
	ErrorCodeRejected         = "REJECTED"
	ErrorCodeTimeout          = "TIMEOUT"
	ErrorCodeCircuitOpen      = "CIRCUIT_OPEN"
)

// DeliveryError is returned for every failed SendArchive call.
type DeliveryError struct {
	Code string
	Op   string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("mail delivery %s (%s): %v", e.Op, e.Code, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsCode reports whether err is a DeliveryError with the given code.
func IsCode(err error, code string) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Code == code
}

// classify picks a code for a relay error raised during op.
// Dial and TLS failures are connection failures, SMTP 535 and failures
// inside AUTH are auth failures, other SMTP replies are rejections.
func classify(op string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorCodeTimeout
	}

	var tpe *textproto.Error
	if errors.As(err, &tpe) {
		if tpe.Code == 535 || tpe.Code == 534 || tpe.Code == 530 {
			return ErrorCodeAuthFailed
		}
		if op == opAuth {
			return ErrorCodeAuthFailed
		}
		return ErrorCodeRejected
	}

	if op == opAuth {
		return ErrorCodeAuthFailed
	}
	return ErrorCodeConnectionFailed
}
