package transport

import (
	"context"
	"time"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/infrastructure/logging"
	"github.com/carlosrabelo/mirante/core/platform"
)

// DirectExecutor opens one interactive session straight to the device,
// submits a single command and reads its synchronous output. The session is
// torn down on completion or failure; there is no retry.
type DirectExecutor struct {
	Device     *entities.Device
	Credential entities.Credential
	Profile    *platform.Profile
	Command    string
	Dial       Dialer
	Timeout    time.Duration
	Generic    string
	Log        *logging.Logger
}

// Run executes the command. Authentication and session timeout failures are
// converted to the generic failure message with invalid status.
func (d *DirectExecutor) Run(ctx context.Context) entities.Result {
	d.Log.Debugf("connecting to %s directly", d.Device.Name)

	session, err := d.Dial(SessionTarget{
		Host:       d.Device.Address,
		Port:       d.Device.Port,
		Credential: d.Credential,
		Transport:  d.Device.Transport,
	}, d.Profile, d.Timeout)
	if err != nil {
		d.Log.Errorf("failed to open session to %s: %v", d.Device.Name, err)
		return entities.Result{Output: d.Generic, Status: entities.StatusInvalid}
	}
	defer session.Close()

	output, err := session.SendCommand(d.Command)
	if err != nil {
		d.Log.Errorf("command failed on %s: %v", d.Device.Name, err)
		return entities.Result{Output: d.Generic, Status: entities.StatusInvalid}
	}

	return entities.Result{Output: output, Status: entities.StatusValid}
}
