// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package mail sends the backup archive to the configured recipient.
//
// SendArchive reads the whole archive before it dials, so a missing file is
// reported without touching the relay. There are no retries: one call is one
// SMTP transaction, and it either hands the full message to the relay or
// fails. Repeated relay failures open a circuit breaker so later calls fail
// fast with CIRCUIT_OPEN until the breaker timeout elapses.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/innledger/internal/config"
	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/metrics"
)

// SMTP stages, used to classify failures.
const (
	opRead  = "read archive"
	opDial  = "dial"
	opTLS   = "tls"
	opHello = "hello"
	opAuth  = "auth"
	opSend  = "send"
)

const breakerName = "mail-relay"

// Dispatcher delivers archives through one SMTP relay.
type Dispatcher struct {
	cfg     config.MailConfig
	breaker *gobreaker.CircuitBreaker[struct{}]

	// tlsConfig overrides the relay TLS settings. Tests use it to trust a
	// self-signed relay.
	tlsConfig *tls.Config
	now       func() time.Time
}

// NewDispatcher creates a dispatcher for cfg. cfg is expected to have passed
// config validation.
func NewDispatcher(cfg config.MailConfig) *Dispatcher {
	failures := cfg.BreakerFailures
	if failures < 1 {
		failures = 3
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= uint32(failures) //nolint:gosec // failures is >= 1
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening mail relay circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &Dispatcher{cfg: cfg, breaker: cb, now: time.Now}
}

// SendArchive mails the file at path as an attachment.
// Every failure is a *DeliveryError.
func (d *Dispatcher) SendArchive(ctx context.Context, path string) error {
	start := time.Now()
	err := d.send(ctx, path)

	result := "sent"
	var de *DeliveryError
	if errors.As(err, &de) {
		result = de.Code
	}
	metrics.RecordMailDelivery(result, time.Since(start))

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("code", result).Str("recipient", d.cfg.Recipient).
			Msg("Backup archive delivery failed")
		return err
	}
	logging.Ctx(ctx).Info().Str("recipient", d.cfg.Recipient).Str("archive", path).
		Dur("duration", time.Since(start)).Msg("Backup archive delivered")
	return nil
}

//nolint:gosec // G304: path is the exporter's archive path
func (d *Dispatcher) send(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &DeliveryError{Code: ErrorCodeArchiveMissing, Op: opRead, Err: err}
	}

	msg, err := buildMessage(messageParams{
		From:       d.cfg.From,
		To:         d.cfg.Recipient,
		Subject:    d.cfg.Subject,
		Body:       d.cfg.Body,
		Filename:   filepath.Base(path),
		Attachment: data,
		Date:       d.now(),
	})
	if err != nil {
		return &DeliveryError{Code: ErrorCodeRejected, Op: "build message", Err: err}
	}

	_, err = d.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, d.sendSMTP(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &DeliveryError{Code: ErrorCodeCircuitOpen, Op: opDial, Err: err}
	}
	return err
}

// sendSMTP runs one SMTP transaction. Port 465 uses implicit TLS, other
// ports upgrade with STARTTLS when UseTLS is set.
func (d *Dispatcher) sendSMTP(ctx context.Context, msg []byte) error {
	host := d.cfg.Host
	addr := net.JoinHostPort(host, strconv.Itoa(d.cfg.Port))

	deadline := d.now().Add(d.cfg.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	fail := func(op string, err error) error {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return &DeliveryError{Code: classify(op, err), Op: op, Err: err}
	}

	dialer := &net.Dialer{Timeout: d.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fail(opDial, err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup
	if err := conn.SetDeadline(deadline); err != nil {
		return fail(opDial, err)
	}

	implicitTLS := d.cfg.UseTLS && d.cfg.Port == 465
	if implicitTLS {
		tlsConn := tls.Client(conn, d.tls(host))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return fail(opTLS, err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fail(opHello, err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if d.cfg.UseTLS && !implicitTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fail(opTLS, errors.New("relay does not offer STARTTLS"))
		}
		if err := client.StartTLS(d.tls(host)); err != nil {
			return fail(opTLS, err)
		}
	}

	if d.cfg.Username != "" && d.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			return fail(opAuth, errors.New("relay does not offer AUTH"))
		}
		auth := smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, host)
		if err := client.Auth(auth); err != nil {
			return fail(opAuth, err)
		}
	}

	if err := client.Mail(d.cfg.From); err != nil {
		return fail(opSend, err)
	}
	if err := client.Rcpt(d.cfg.Recipient); err != nil {
		return fail(opSend, err)
	}
	w, err := client.Data()
	if err != nil {
		return fail(opSend, err)
	}
	if _, err := w.Write(msg); err != nil {
		return fail(opSend, err)
	}
	if err := w.Close(); err != nil {
		return fail(opSend, err)
	}

	// The relay accepted the message once DATA closed.
	_ = client.Quit() //nolint:errcheck // message already accepted
	return nil
}

func (d *Dispatcher) tls(host string) *tls.Config {
	if d.tlsConfig != nil {
		return d.tlsConfig
	}
	return &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
}

// BreakerState returns the relay breaker state name.
func (d *Dispatcher) BreakerState() string {
	return stateToString(d.breaker.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
