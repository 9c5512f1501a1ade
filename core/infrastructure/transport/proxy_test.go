package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/infrastructure/logging"
	"github.com/carlosrabelo/mirante/core/platform"
)

// fakeSession scripts channel reads and records every write so tests can
// assert the exact negotiation sequence
type fakeSession struct {
	writes  []string
	reads   []string
	readIdx int

	commands      []string
	sendOutput    string
	sendErr       error
	redispatched  *platform.Profile
	redispatchErr error
	closed        bool
}

func (f *fakeSession) WriteChannel(data string) error {
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeSession) ReadChannel(poll, max time.Duration) (string, error) {
	if f.readIdx >= len(f.reads) {
		return "", nil
	}
	out := f.reads[f.readIdx]
	f.readIdx++
	return out, nil
}

func (f *fakeSession) SendCommand(cmd string) (string, error) {
	f.commands = append(f.commands, cmd)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.sendOutput, nil
}

func (f *fakeSession) Redispatch(profile *platform.Profile) error {
	f.redispatched = profile
	return f.redispatchErr
}

func (f *fakeSession) Close() { f.closed = true }

func fakeDialer(session TerminalSession, err error) Dialer {
	return func(target SessionTarget, profile *platform.Profile, timeout time.Duration) (TerminalSession, error) {
		return session, err
	}
}

func testProxyExecutor(session *fakeSession, dialErr error) *ProxyExecutor {
	profile, _ := platform.Get("cisco_ios")
	return &ProxyExecutor{
		Device: &entities.Device{
			Name:    "edge1",
			Address: "192.0.2.10",
			NOS:     "cisco_ios",
			Proxy:   "jump1",
		},
		Credential: entities.Credential{Username: "lg", Password: "devicesecret"},
		Profile:    profile,
		Proxy: &entities.Proxy{
			Name:       "jump1",
			Address:    "192.0.2.1",
			Username:   "bastion",
			NOS:        "linux_ssh",
			SSHCommand: "ssh -o StrictHostKeyChecking=ask -l {username} {host}",
		},
		ProxyCred:  entities.Credential{Username: "bastion", Password: "bastionsecret"},
		Command:    "show bgp all 192.0.2.0/24",
		Dial:       fakeDialer(session, dialErr),
		Timeout:    time.Second,
		SettlePoll: 10 * time.Millisecond,
		SettleMax:  50 * time.Millisecond,
		Generic:    "general failure",
		Log:        logging.New(false),
	}
}

func TestProxyHostKeyConfirmation(t *testing.T) {
	session := &fakeSession{
		reads:      []string{"The authenticity of host '192.0.2.10' can't be established.\nAre you sure you want to continue connecting (yes/no)? "},
		sendOutput: "route info",
	}
	executor := testProxyExecutor(session, nil)

	result := executor.Run(context.Background())
	if result.Status != entities.StatusValid {
		t.Fatalf("expected valid status, got %v with output %q", result.Status, result.Output)
	}
	if result.Output != "route info" {
		t.Errorf("expected command output, got %q", result.Output)
	}

	want := []string{
		"ssh -o StrictHostKeyChecking=ask -l lg 192.0.2.10\n",
		"yes\n",
		"devicesecret\n",
	}
	if len(session.writes) != len(want) {
		t.Fatalf("expected %d writes, got %d: %q", len(want), len(session.writes), session.writes)
	}
	for i, w := range want {
		if session.writes[i] != w {
			t.Errorf("write %d: expected %q, got %q", i, w, session.writes[i])
		}
	}
	if !session.closed {
		t.Error("session was not closed")
	}
}

func TestProxyPasswordPrompt(t *testing.T) {
	session := &fakeSession{
		reads:      []string{"lg@192.0.2.10's Password: ", "\nedge1#"},
		sendOutput: "route info",
	}
	executor := testProxyExecutor(session, nil)

	result := executor.Run(context.Background())
	if result.Status != entities.StatusValid {
		t.Fatalf("expected valid status, got %v", result.Status)
	}

	// exactly one secret write after the jump command, then one more read
	want := []string{
		"ssh -o StrictHostKeyChecking=ask -l lg 192.0.2.10\n",
		"devicesecret\n",
	}
	if len(session.writes) != len(want) {
		t.Fatalf("expected %d writes, got %d: %q", len(want), len(session.writes), session.writes)
	}
	for i, w := range want {
		if session.writes[i] != w {
			t.Errorf("write %d: expected %q, got %q", i, w, session.writes[i])
		}
	}
	if session.readIdx != 2 {
		t.Errorf("expected a second channel read after the password, got %d reads", session.readIdx)
	}
}

func TestProxyAlreadyAuthenticated(t *testing.T) {
	session := &fakeSession{
		reads:      []string{"Last login: Mon Aug 31\nedge1#"},
		sendOutput: "route info",
	}
	executor := testProxyExecutor(session, nil)

	result := executor.Run(context.Background())
	if result.Status != entities.StatusValid {
		t.Fatalf("expected valid status, got %v", result.Status)
	}
	if len(session.writes) != 1 {
		t.Errorf("expected only the jump command write, got %q", session.writes)
	}
	if session.redispatched == nil || session.redispatched.NOS != "cisco_ios" {
		t.Error("session was not redispatched to the target NOS profile")
	}
}

func TestProxyRedispatchesBeforeCommand(t *testing.T) {
	session := &fakeSession{
		reads:      []string{"Password: "},
		sendOutput: "route info",
	}
	executor := testProxyExecutor(session, nil)
	executor.Run(context.Background())

	if session.redispatched == nil {
		t.Fatal("expected redispatch before the command")
	}
	if session.redispatched.NOS != "cisco_ios" {
		t.Errorf("redispatched to %s, expected cisco_ios", session.redispatched.NOS)
	}
	if len(session.commands) != 1 || session.commands[0] != "show bgp all 192.0.2.0/24" {
		t.Errorf("expected the query command, got %q", session.commands)
	}
}

func TestProxyBastionDialFailure(t *testing.T) {
	executor := testProxyExecutor(nil, &entities.AuthError{Host: "192.0.2.1", Err: errors.New("permission denied")})

	result := executor.Run(context.Background())
	if result.Status != entities.StatusInvalid {
		t.Error("expected invalid status on bastion dial failure")
	}
	if result.Output != "general failure" {
		t.Errorf("expected generic message, got %q", result.Output)
	}
}

func TestProxyTargetAuthFailure(t *testing.T) {
	// bastion login succeeded, target rejects the session during redispatch
	session := &fakeSession{
		reads:         []string{"Password: "},
		redispatchErr: &entities.SessionTimeoutError{Host: "192.0.2.10", Wait: "#"},
	}
	executor := testProxyExecutor(session, nil)

	result := executor.Run(context.Background())
	if result.Status != entities.StatusInvalid {
		t.Error("expected invalid status when target login fails")
	}
	if result.Output != "general failure" {
		t.Errorf("expected generic message, got %q", result.Output)
	}
	if len(session.commands) != 0 {
		t.Errorf("no command should run after a failed redispatch, got %q", session.commands)
	}
	if !session.closed {
		t.Error("session was not closed after failure")
	}
}

func TestProxyCommandFailure(t *testing.T) {
	session := &fakeSession{
		reads:   []string{"Password: "},
		sendErr: &entities.SessionTimeoutError{Host: "192.0.2.10", Wait: "#"},
	}
	executor := testProxyExecutor(session, nil)

	result := executor.Run(context.Background())
	if result.Status != entities.StatusInvalid {
		t.Error("expected invalid status when the command times out")
	}
	if !session.closed {
		t.Error("session was not closed after failure")
	}
}
