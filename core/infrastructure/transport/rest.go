package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/infrastructure/logging"
)

// RestExecutor issues one HTTP POST to a device-side query agent (FRRouting
// and BIRD devices expose one). The call is fully completed before the body
// is read; the upstream HTTP status is forwarded as-is in the result.
type RestExecutor struct {
	Device     *entities.Device
	Credential entities.Credential
	Payload    []byte
	Client     *http.Client
	Generic    string
	Log        *logging.Logger
}

// Run performs the query. Any transport-layer failure (connection refused,
// timeout, protocol error, unreadable body) is converted to the generic
// failure message with invalid status; the cause is only logged.
func (r *RestExecutor) Run(ctx context.Context) entities.Result {
	endpoint := fmt.Sprintf("http://%s:%d/%s", r.Device.Address, r.Device.Port, r.Device.NOS)
	r.Log.Debugf("querying %s at %s", r.Device.Name, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(r.Payload))
	if err != nil {
		r.Log.Errorf("failed to build request for %s: %v", r.Device.Name, err)
		return entities.Result{Output: r.Generic, Status: entities.StatusInvalid}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", r.Credential.Password)

	resp, err := r.Client.Do(req)
	if err != nil {
		r.Log.Errorf("error connecting to device %s: %v", r.Device.Name, err)
		return entities.Result{Output: r.Generic, Status: entities.StatusInvalid}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.Log.Errorf("error reading response from device %s: %v", r.Device.Name, err)
		return entities.Result{Output: r.Generic, Status: entities.StatusInvalid}
	}

	r.Log.Debugf("device %s responded with HTTP %d", r.Device.Name, resp.StatusCode)
	return entities.Result{
		Output:     string(body),
		Status:     entities.StatusValid,
		HTTPStatus: resp.StatusCode,
	}
}
