// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"time"

	"github.com/google/uuid"
)

// base64LineLen is the RFC 2045 limit for encoded lines.
const base64LineLen = 76

type messageParams struct {
	From       string
	To         string
	Subject    string
	Body       string
	Filename   string
	Attachment []byte
	Date       time.Time
}

// buildMessage renders a multipart/mixed message with a text body and the
// archive as a base64 attachment.
func buildMessage(p messageParams) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", p.From)
	fmt.Fprintf(&buf, "To: %s\r\n", p.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", p.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", p.Date.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@innledger>\r\n", uuid.New().String())
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	buf.WriteString("\r\n")

	body, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := body.Write([]byte(p.Body + "\r\n")); err != nil {
		return nil, err
	}

	att, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType("application/zip", map[string]string{"name": p.Filename})},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": p.Filename})},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(p.Attachment)
	for len(encoded) > base64LineLen {
		if _, err := att.Write([]byte(encoded[:base64LineLen] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[base64LineLen:]
	}
	if _, err := att.Write([]byte(encoded + "\r\n")); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
