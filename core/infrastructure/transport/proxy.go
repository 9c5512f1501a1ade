package transport

import (
	"context"
	"strings"
	"time"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/infrastructure/logging"
	"github.com/carlosrabelo/mirante/core/platform"
)

const (
	// hostKeyPrompt is the OpenSSH first-connection confirmation text
	hostKeyPrompt = "Are you sure you want to continue connecting"
	// passwordPrompt matches both "Password:" and "password:"
	passwordPrompt = "assword"
)

// ProxyExecutor reaches a device through a bastion host: it logs into the
// bastion, writes the rendered jump command into the channel, negotiates the
// target login from the accumulated channel output, reclassifies the session
// to the target NOS dialect and only then submits the query command.
type ProxyExecutor struct {
	Device     *entities.Device
	Credential entities.Credential
	Profile    *platform.Profile

	Proxy     *entities.Proxy
	ProxyCred entities.Credential

	Command    string
	Dial       Dialer
	Timeout    time.Duration
	SettlePoll time.Duration
	SettleMax  time.Duration
	Generic    string
	Log        *logging.Logger
}

// Run performs the two-hop traversal. Any authentication or timeout failure
// at the bastion, during target negotiation or when running the command is
// converted to the generic failure message with invalid status; progress is
// not rolled back beyond closing the session.
func (p *ProxyExecutor) Run(ctx context.Context) entities.Result {
	proxyProfile, err := platform.Get(p.Proxy.NOS)
	if err != nil {
		p.Log.Errorf("proxy %s: %v", p.Proxy.Name, err)
		return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
	}

	p.Log.Debugf("connecting to %s via proxy %s", p.Device.Name, p.Proxy.Name)
	session, err := p.Dial(SessionTarget{
		Host:       p.Proxy.Address,
		Port:       DefaultSSHPort,
		Credential: entities.Credential{Username: p.Proxy.Username, Password: p.ProxyCred.Password},
	}, proxyProfile, p.Timeout)
	if err != nil {
		p.Log.Errorf("failed to open session to proxy %s: %v", p.Proxy.Name, err)
		return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
	}
	defer session.Close()

	jump := p.renderJumpCommand()
	p.Log.Debugf("jump command for %s sent to proxy %s", p.Device.Name, p.Proxy.Name)
	if err := session.WriteChannel(jump + "\n"); err != nil {
		p.Log.Errorf("failed to write jump command on proxy %s: %v", p.Proxy.Name, err)
		return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
	}

	negotiated, err := session.ReadChannel(p.SettlePoll, p.SettleMax)
	if err != nil {
		p.Log.Errorf("failed to read jump output on proxy %s: %v", p.Proxy.Name, err)
		return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
	}

	switch {
	case strings.Contains(negotiated, hostKeyPrompt):
		p.Log.Debugf("received OpenSSH host key warning from %s", p.Device.Name)
		if err := session.WriteChannel("yes\n"); err != nil {
			p.Log.Errorf("failed to confirm host key for %s: %v", p.Device.Name, err)
			return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
		}
		if err := session.WriteChannel(p.Credential.Password + "\n"); err != nil {
			p.Log.Errorf("failed to send password to %s: %v", p.Device.Name, err)
			return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
		}
	case strings.Contains(negotiated, passwordPrompt):
		p.Log.Debugf("received password prompt from %s", p.Device.Name)
		if err := session.WriteChannel(p.Credential.Password + "\n"); err != nil {
			p.Log.Errorf("failed to send password to %s: %v", p.Device.Name, err)
			return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
		}
		more, err := session.ReadChannel(p.SettlePoll, p.SettleMax)
		if err != nil {
			p.Log.Errorf("failed to read login output from %s: %v", p.Device.Name, err)
			return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
		}
		negotiated += more
	default:
		// no prompt observed, session already authenticated
		p.Log.Debugf("no login prompt from %s, assuming authenticated", p.Device.Name)
	}

	p.Log.Debugf("redispatching session to NOS %s", p.Device.NOS)
	if err := session.Redispatch(p.Profile); err != nil {
		p.Log.Errorf("failed to redispatch session to %s: %v", p.Device.Name, err)
		return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
	}

	output, err := session.SendCommand(p.Command)
	if err != nil {
		p.Log.Errorf("command failed on %s via proxy %s: %v", p.Device.Name, p.Proxy.Name, err)
		return entities.Result{Output: p.Generic, Status: entities.StatusInvalid}
	}

	return entities.Result{Output: output, Status: entities.StatusValid}
}

// renderJumpCommand fills the proxy's jump template with the target login
func (p *ProxyExecutor) renderJumpCommand() string {
	return strings.NewReplacer(
		"{host}", p.Device.Address,
		"{device_type}", p.Device.NOS,
		"{username}", p.Credential.Username,
		"{password}", p.Credential.Password,
	).Replace(p.Proxy.SSHCommand)
}
