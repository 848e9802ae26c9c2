// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressionMinSize keeps small envelopes uncompressed.
const compressionMinSize = 1024

// Compression returns gzip middleware for responses larger than 1 KiB.
// Clients that do not send Accept-Encoding: gzip get the plain body.
func Compression() func(http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(compressionMinSize))
	if err != nil {
		// Only reachable with invalid static options.
		panic(err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}
}
