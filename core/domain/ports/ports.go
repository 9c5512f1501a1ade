package ports

import (
	"context"

	"github.com/carlosrabelo/mirante/core/domain/entities"
)

// Validator is the external policy check consulted before any transport work.
// Its message is caller-facing and returned verbatim on rejection.
type Validator interface {
	Validate(req entities.QueryRequest) (bool, string, entities.Status)
}

// CommandBuilder produces the transport-specific input for one query
type CommandBuilder interface {
	// BuildPayload returns the JSON body for a REST capable device
	BuildPayload(device *entities.Device, req entities.QueryRequest) ([]byte, error)

	// BuildCommand returns the command string for an interactive device
	BuildCommand(device *entities.Device, req entities.QueryRequest) (string, error)
}

// Executor runs one query over one transport; transport failures are
// converted to a user-safe result, never propagated
type Executor interface {
	Run(ctx context.Context) entities.Result
}
