package auth

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

// fakeEndpoint replays a scripted sequence of qr/check statuses.
type fakeEndpoint struct {
	keyErr    error
	createErr error
	statuses  []CheckStatus
	checkErrs []error
	checks    int
}

func (f *fakeEndpoint) QRKey(_ context.Context) (string, error) {
	if f.keyErr != nil {
		return "", f.keyErr
	}
	return "unikey-1", nil
}

func (f *fakeEndpoint) QRCreate(_ context.Context, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return "https://music.example/login?codekey=unikey-1", nil
}

func (f *fakeEndpoint) QRCheck(_ context.Context, _ string) (*CheckStatus, error) {
	i := f.checks
	f.checks++
	if i < len(f.checkErrs) && f.checkErrs[i] != nil {
		return nil, f.checkErrs[i]
	}
	if i >= len(f.statuses) {
		return &CheckStatus{Code: codeAwaitingScan}, nil
	}
	status := f.statuses[i]
	return &status, nil
}

func newTestFlow(endpoint Endpoint, maxAttempts int) *Flow {
	return NewFlow(endpoint, 0, maxAttempts, zap.NewNop())
}

func TestFlow_Login_Succeeds(t *testing.T) {
	endpoint := &fakeEndpoint{
		statuses: []CheckStatus{
			{Code: 801},
			{Code: 801},
			{Code: 802},
			{Code: 803, Cookie: "X"},
		},
	}
	flow := newTestFlow(endpoint, 60)

	result := flow.Login(context.Background())
	if result.State != StateSucceeded {
		t.Fatalf("State = %v, want succeeded", result.State)
	}
	if result.Cookie != "X" {
		t.Errorf("Cookie = %q, want %q", result.Cookie, "X")
	}
	if endpoint.checks != 4 {
		t.Errorf("checks = %d, want polling to stop at success", endpoint.checks)
	}
}

func TestFlow_Login_ExpiredStopsImmediately(t *testing.T) {
	endpoint := &fakeEndpoint{
		statuses: []CheckStatus{
			{Code: 801},
			{Code: 800},
			{Code: 803, Cookie: "never-reached"},
		},
	}
	flow := newTestFlow(endpoint, 60)

	result := flow.Login(context.Background())
	if result.State != StateExpired {
		t.Fatalf("State = %v, want expired", result.State)
	}
	if result.Cookie != "" {
		t.Errorf("Cookie = %q, want empty", result.Cookie)
	}
	if endpoint.checks != 2 {
		t.Errorf("checks = %d, want no polling past the expiry code", endpoint.checks)
	}
}

func TestFlow_Login_AttemptCap(t *testing.T) {
	// Endpoint answers 801 forever; the cap must end the flow.
	endpoint := &fakeEndpoint{}
	flow := newTestFlow(endpoint, 60)

	result := flow.Login(context.Background())
	if result.State != StateTimedOut {
		t.Fatalf("State = %v, want timed-out", result.State)
	}
	if result.Cookie != "" {
		t.Errorf("Cookie = %q, want empty", result.Cookie)
	}
	if endpoint.checks != 60 {
		t.Errorf("checks = %d, want exactly the attempt cap", endpoint.checks)
	}
}

func TestFlow_Login_CheckErrorsCountAgainstCap(t *testing.T) {
	endpoint := &fakeEndpoint{
		checkErrs: []error{errors.New("boom"), nil},
		statuses: []CheckStatus{
			{},
			{Code: 803, Cookie: "Y"},
		},
	}
	flow := newTestFlow(endpoint, 60)

	result := flow.Login(context.Background())
	if result.State != StateSucceeded || result.Cookie != "Y" {
		t.Fatalf("result = %+v, want success with cookie Y after a failed poll", result)
	}
}

func TestFlow_Login_SetupFailureNeverEscapes(t *testing.T) {
	tests := []struct {
		name     string
		endpoint *fakeEndpoint
	}{
		{name: "Key request fails", endpoint: &fakeEndpoint{keyErr: errors.New("down")}},
		{name: "Create request fails", endpoint: &fakeEndpoint{createErr: errors.New("down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := newTestFlow(tt.endpoint, 60)
			result := flow.Login(context.Background())
			if result.State != StateAwaitingKey {
				t.Errorf("State = %v, want awaiting-key", result.State)
			}
			if result.Cookie != "" {
				t.Errorf("Cookie = %q, want empty", result.Cookie)
			}
		})
	}
}

func TestFlow_Login_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flow := newTestFlow(&fakeEndpoint{}, 60)
	result := flow.Login(ctx)
	if result.State != StateTimedOut {
		t.Errorf("State = %v, want timed-out on cancelled context", result.State)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		current State
		code    int
		want    State
	}{
		{"Scan seen", StateAwaitingScan, 802, StateAwaitingConfirm},
		{"Confirm to success", StateAwaitingConfirm, 803, StateSucceeded},
		{"Expiry from any state", StateAwaitingConfirm, 800, StateExpired},
		{"Unknown code holds state", StateAwaitingConfirm, 502, StateAwaitingConfirm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transition(tt.current, tt.code); got != tt.want {
				t.Errorf("transition(%v, %d) = %v, want %v", tt.current, tt.code, got, tt.want)
			}
		})
	}
}

func TestState_Terminal(t *testing.T) {
	terminal := []State{StateSucceeded, StateExpired, StateTimedOut}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%v.Terminal() = false, want true", s)
		}
	}
	for _, s := range []State{StateAwaitingKey, StateAwaitingScan, StateAwaitingConfirm} {
		if s.Terminal() {
			t.Errorf("%v.Terminal() = true, want false", s)
		}
	}
}
