package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/ziutek/telnet"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/platform"
)

const promptUsername = "Username:"

// telnetSession manages an interactive telnet session to a device
type telnetSession struct {
	host    string
	timeout time.Duration
	profile *platform.Profile
	conn    *telnet.Conn
}

// DialTelnet opens a telnet session, walks the username/password login
// sequence and disables output paging
func DialTelnet(target SessionTarget, profile *platform.Profile, timeout time.Duration) (TerminalSession, error) {
	addr := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	conn, err := telnet.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s via telnet: %v", target.Host, err)
	}

	tc := &telnetSession{
		host:    target.Host,
		timeout: timeout,
		profile: profile,
		conn:    conn,
	}

	if _, err := tc.readUntilLogin(promptUsername, timeout); err != nil {
		tc.Close()
		return nil, &entities.AuthError{Host: target.Host, Err: err}
	}
	if err := tc.WriteChannel(target.Credential.Username + "\n"); err != nil {
		tc.Close()
		return nil, fmt.Errorf("failed to send username to %s: %v", target.Host, err)
	}
	if _, err := tc.readUntilLogin(passwordPrompt, timeout); err != nil {
		tc.Close()
		return nil, &entities.AuthError{Host: target.Host, Err: err}
	}
	if err := tc.WriteChannel(target.Credential.Password + "\n"); err != nil {
		tc.Close()
		return nil, fmt.Errorf("failed to send password to %s: %v", target.Host, err)
	}

	if err := tc.prepare(); err != nil {
		tc.Close()
		return nil, err
	}
	return tc, nil
}

func (tc *telnetSession) prepare() error {
	if _, err := tc.readUntilAny(tc.profile.PromptSuffixes, tc.timeout); err != nil {
		return err
	}
	if tc.profile.PagingCommand != "" {
		if err := tc.WriteChannel(tc.profile.PagingCommand + "\n"); err != nil {
			return fmt.Errorf("failed to send paging command to %s: %v", tc.host, err)
		}
		if _, err := tc.readUntilAny(tc.profile.PromptSuffixes, tc.timeout); err != nil {
			return err
		}
	}
	return nil
}

func (tc *telnetSession) WriteChannel(data string) error {
	_, err := tc.conn.Write([]byte(data))
	return err
}

func (tc *telnetSession) ReadChannel(poll, max time.Duration) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	deadline := time.Now().Add(max)

	for {
		_ = tc.conn.SetReadDeadline(time.Now().Add(poll))
		n, err := tc.conn.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if output.Len() > 0 || time.Now().After(deadline) {
					return output.String(), nil
				}
				continue
			}
			return output.String(), fmt.Errorf("read error on %s: %v", tc.host, err)
		}
		if time.Now().After(deadline) {
			return output.String(), nil
		}
	}
}

func (tc *telnetSession) SendCommand(cmd string) (string, error) {
	if err := tc.WriteChannel(cmd + "\n"); err != nil {
		return "", fmt.Errorf("failed to send command %s: %v", cmd, err)
	}
	output, err := tc.readUntilAny(tc.profile.PromptSuffixes, tc.timeout)
	if err != nil {
		return "", err
	}
	return stripEcho(output), nil
}

func (tc *telnetSession) Redispatch(profile *platform.Profile) error {
	tc.profile = profile
	return tc.prepare()
}

func (tc *telnetSession) Close() {
	if tc.conn != nil {
		tc.conn.Close()
		tc.conn = nil
	}
}

// readUntilLogin accumulates output until the current line contains the
// login prompt substring
func (tc *telnetSession) readUntilLogin(prompt string, timeout time.Duration) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		_ = tc.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, err := tc.conn.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
			lines := strings.Split(output.String(), "\n")
			if strings.Contains(lines[len(lines)-1], prompt) {
				return output.String(), nil
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return output.String(), fmt.Errorf("read error on %s: %v", tc.host, err)
		}
	}
	return output.String(), &entities.SessionTimeoutError{Host: tc.host, Wait: prompt}
}

// readUntilAny accumulates output until the last line ends with one of the
// patterns or the deadline passes
func (tc *telnetSession) readUntilAny(patterns []string, timeout time.Duration) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	output.Grow(BufferSize)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		_ = tc.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, err := tc.conn.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
			if promptReached(output.String(), patterns) {
				return output.String(), nil
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return output.String(), fmt.Errorf("read error on %s: %v", tc.host, err)
		}
	}
	return output.String(), &entities.SessionTimeoutError{
		Host: tc.host,
		Wait: strings.Join(patterns, ", "),
	}
}
