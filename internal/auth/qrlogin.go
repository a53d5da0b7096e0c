// Package auth implements the QR-code login handshake as a bounded polling
// state machine against the upstream login endpoints.
package auth

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// State is one node of the login state machine.
type State int

const (
	StateAwaitingKey State = iota
	StateAwaitingScan
	StateAwaitingConfirm
	StateSucceeded
	StateExpired
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateAwaitingKey:
		return "awaiting-key"
	case StateAwaitingScan:
		return "awaiting-scan"
	case StateAwaitingConfirm:
		return "awaiting-confirm"
	case StateSucceeded:
		return "succeeded"
	case StateExpired:
		return "expired"
	case StateTimedOut:
		return "timed-out"
	}
	return "unknown"
}

// Terminal reports whether the machine stops in this state.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateExpired || s == StateTimedOut
}

// Upstream QR status codes.
const (
	codeExpired         = 800
	codeAwaitingScan    = 801
	codeAwaitingConfirm = 802
	codeSucceeded       = 803
)

// CheckStatus is one poll result from the qr/check endpoint. Cookie is only
// populated on the success code.
type CheckStatus struct {
	Code   int
	Cookie string
}

// Endpoint is the upstream surface the login flow consumes.
type Endpoint interface {
	QRKey(ctx context.Context) (string, error)
	QRCreate(ctx context.Context, key string) (qrURL string, err error)
	QRCheck(ctx context.Context, key string) (*CheckStatus, error)
}

// Result is the outcome of a login flow. Cookie is empty unless State is
// StateSucceeded; failures never escape the flow as errors.
type Result struct {
	State  State
	Cookie string
}

// QRPageURL wraps the raw QR payload in a hosted page that renders it as a
// scannable image.
func QRPageURL(qrURL string) string {
	return "https://cdn.dotmaui.com/qrc/?t=" + url.QueryEscape(qrURL)
}

// Flow runs the QR login handshake: obtain a key, create the QR payload,
// then poll qr/check at a fixed interval up to a fixed attempt cap.
type Flow struct {
	endpoint    Endpoint
	interval    time.Duration
	maxAttempts int
	logger      *zap.Logger

	// OnQRCode, when set, receives the scannable page URL before polling
	// starts.
	OnQRCode func(pageURL string)
}

func NewFlow(endpoint Endpoint, interval time.Duration, maxAttempts int, logger *zap.Logger) *Flow {
	return &Flow{
		endpoint:    endpoint,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// transition is the fixed table mapping an upstream status code to the next
// state. Unknown codes keep the machine where it is.
func transition(current State, code int) State {
	switch code {
	case codeExpired:
		return StateExpired
	case codeAwaitingScan:
		return StateAwaitingScan
	case codeAwaitingConfirm:
		return StateAwaitingConfirm
	case codeSucceeded:
		return StateSucceeded
	}
	return current
}

// Login runs the flow to a terminal state. Transport failures are absorbed
// and logged: a setup failure returns the state the machine was stuck in,
// a failed poll counts against the attempt cap, and cap exhaustion or
// context cancellation yields StateTimedOut.
func (f *Flow) Login(ctx context.Context) Result {
	key, err := f.endpoint.QRKey(ctx)
	if err != nil {
		f.logger.Warn("QR key request failed", zap.Error(err))
		return Result{State: StateAwaitingKey}
	}

	qrURL, err := f.endpoint.QRCreate(ctx, key)
	if err != nil {
		f.logger.Warn("QR create request failed", zap.Error(err))
		return Result{State: StateAwaitingKey}
	}

	pageURL := QRPageURL(qrURL)
	f.logger.Info("Scan the QR code to log in", zap.String("url", pageURL))
	if f.OnQRCode != nil {
		f.OnQRCode(pageURL)
	}

	state := StateAwaitingScan
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if !f.sleep(ctx) {
			return Result{State: StateTimedOut}
		}

		status, err := f.endpoint.QRCheck(ctx, key)
		if err != nil {
			f.logger.Warn("QR check failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		next := transition(state, status.Code)
		if next != state {
			f.logger.Debug("Login state changed",
				zap.Stringer("from", state),
				zap.Stringer("to", next))
			state = next
		}

		switch state {
		case StateSucceeded:
			f.logger.Info("QR login succeeded")
			return Result{State: StateSucceeded, Cookie: status.Cookie}
		case StateExpired:
			f.logger.Warn("QR code expired before it was scanned")
			return Result{State: StateExpired}
		}
	}

	f.logger.Warn("QR login timed out", zap.Int("attempts", f.maxAttempts))
	return Result{State: StateTimedOut}
}

// sleep suspends for one poll interval; false means the context ended first.
func (f *Flow) sleep(ctx context.Context) bool {
	if f.interval <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(f.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
