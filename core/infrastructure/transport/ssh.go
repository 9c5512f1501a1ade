package transport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/platform"
)

// sshSession manages an interactive SSH session to a device or bastion
type sshSession struct {
	host    string
	timeout time.Duration
	profile *platform.Profile

	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	reader  *bufio.Reader
	netConn net.Conn
}

// DialSSH opens an authenticated SSH session with a PTY and shell, waits for
// the profile's prompt and disables output paging
func DialSSH(target SessionTarget, profile *platform.Profile, timeout time.Duration) (TerminalSession, error) {
	addr := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	sshConfig := &ssh.ClientConfig{
		User:            target.Credential.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(target.Credential.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	dialer := &net.Dialer{Timeout: timeout}
	rawConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s via SSH: %v", target.Host, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, sshConfig)
	if err != nil {
		rawConn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, &entities.AuthError{Host: target.Host, Err: err}
		}
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %v", target.Host, err)
	}

	client := ssh.NewClient(clientConn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		rawConn.Close()
		return nil, fmt.Errorf("failed to create SSH session for %s: %v", target.Host, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := session.RequestPty("vt100", 80, 40, modes); err != nil {
		session.Close()
		client.Close()
		rawConn.Close()
		return nil, fmt.Errorf("failed to request PTY for %s: %v", target.Host, err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		rawConn.Close()
		return nil, fmt.Errorf("failed to get stdin pipe for %s: %v", target.Host, err)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		rawConn.Close()
		return nil, fmt.Errorf("failed to get stdout pipe for %s: %v", target.Host, err)
	}

	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		rawConn.Close()
		return nil, fmt.Errorf("failed to start shell for %s: %v", target.Host, err)
	}

	sc := &sshSession{
		host:    target.Host,
		timeout: timeout,
		profile: profile,
		client:  client,
		session: session,
		stdin:   stdin,
		reader:  bufio.NewReader(stdout),
		netConn: rawConn,
	}

	if err := sc.prepare(); err != nil {
		sc.Close()
		return nil, err
	}
	return sc, nil
}

// prepare waits for the current profile's prompt and disables paging so
// command output arrives in one synchronous read
func (sc *sshSession) prepare() error {
	if _, err := sc.readUntilPrompt(sc.timeout); err != nil {
		return err
	}
	if sc.profile.PagingCommand != "" {
		if err := sc.WriteChannel(sc.profile.PagingCommand + "\n"); err != nil {
			return fmt.Errorf("failed to send paging command to %s: %v", sc.host, err)
		}
		if _, err := sc.readUntilPrompt(sc.timeout); err != nil {
			return err
		}
	}
	return nil
}

func (sc *sshSession) WriteChannel(data string) error {
	_, err := sc.stdin.Write([]byte(data))
	return err
}

func (sc *sshSession) ReadChannel(poll, max time.Duration) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	deadline := time.Now().Add(max)

	for {
		_ = sc.netConn.SetReadDeadline(time.Now().Add(poll))
		n, err := sc.reader.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// output stopped growing for one poll interval
				if output.Len() > 0 || time.Now().After(deadline) {
					return output.String(), nil
				}
				continue
			}
			return output.String(), fmt.Errorf("read error on %s: %v", sc.host, err)
		}
		if time.Now().After(deadline) {
			return output.String(), nil
		}
	}
}

func (sc *sshSession) SendCommand(cmd string) (string, error) {
	if err := sc.WriteChannel(cmd + "\n"); err != nil {
		return "", fmt.Errorf("failed to send command %s: %v", cmd, err)
	}
	output, err := sc.readUntilPrompt(sc.timeout)
	if err != nil {
		return "", err
	}
	return stripEcho(output), nil
}

func (sc *sshSession) Redispatch(profile *platform.Profile) error {
	sc.profile = profile
	return sc.prepare()
}

func (sc *sshSession) Close() {
	if sc.session != nil {
		sc.session.Close()
		sc.session = nil
	}
	if sc.client != nil {
		sc.client.Close()
		sc.client = nil
	}
	if sc.netConn != nil {
		sc.netConn.Close()
		sc.netConn = nil
	}
	sc.stdin = nil
	sc.reader = nil
}

// readUntilPrompt accumulates channel output until a line ends in one of
// the profile's prompt suffixes or the deadline passes
func (sc *sshSession) readUntilPrompt(timeout time.Duration) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	output.Grow(BufferSize)
	deadline := time.Now().Add(timeout)

	for {
		_ = sc.netConn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, err := sc.reader.Read(buffer)
		if n > 0 {
			output.Write(buffer[:n])
			if promptReached(output.String(), sc.profile.PromptSuffixes) {
				return output.String(), nil
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if time.Now().After(deadline) {
					return output.String(), &entities.SessionTimeoutError{
						Host: sc.host,
						Wait: strings.Join(sc.profile.PromptSuffixes, ", "),
					}
				}
				continue
			}
			return output.String(), fmt.Errorf("read error on %s: %v", sc.host, err)
		}
		if time.Now().After(deadline) {
			return output.String(), &entities.SessionTimeoutError{
				Host: sc.host,
				Wait: strings.Join(sc.profile.PromptSuffixes, ", "),
			}
		}
	}
}

// promptReached reports whether the last line of accumulated output ends
// with one of the prompt suffixes
func promptReached(text string, suffixes []string) bool {
	lines := strings.Split(text, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return false
	}
	for _, suffix := range suffixes {
		if strings.HasSuffix(last, suffix) {
			return true
		}
	}
	return false
}

// stripEcho removes the echoed command line and the trailing prompt line
func stripEcho(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) <= 1 {
		return ""
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
