package services

import (
	"context"
	"net/http"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/domain/ports"
	"github.com/carlosrabelo/mirante/core/infrastructure/config"
	"github.com/carlosrabelo/mirante/core/infrastructure/logging"
	"github.com/carlosrabelo/mirante/core/infrastructure/transport"
	"github.com/carlosrabelo/mirante/core/infrastructure/worker"
	"github.com/carlosrabelo/mirante/core/platform"
)

// QueryService orchestrates one looking glass query: validation, transport
// selection, execution and output normalization. It performs no I/O of its
// own; all side effects live in the executors.
type QueryService struct {
	cfg        *config.Config
	validator  ports.Validator
	builder    ports.CommandBuilder
	dial       transport.Dialer
	pool       *worker.Pool
	httpClient *http.Client
	log        *logging.Logger
}

// NewQueryService wires the orchestrator with its collaborators
func NewQueryService(cfg *config.Config, validator ports.Validator, builder ports.CommandBuilder,
	dial transport.Dialer, pool *worker.Pool, log *logging.Logger) *QueryService {
	return &QueryService{
		cfg:        cfg,
		validator:  validator,
		builder:    builder,
		dial:       dial,
		pool:       pool,
		httpClient: &http.Client{Timeout: cfg.RestTimeout()},
		log:        log,
	}
}

// Execute runs one query end to end and returns the user-facing result.
// A non-nil error means a configuration fault or malformed device output;
// the result always carries a user-safe (text, status) pair when the error
// is a MalformedOutputError.
func (s *QueryService) Execute(ctx context.Context, req entities.QueryRequest) (entities.Result, error) {
	device, err := s.cfg.Device(req.Location)
	if err != nil {
		return entities.Result{}, err
	}

	s.log.Debugf("received %s query for %s on %s", req.Type, req.Target, device.Name)

	valid, msg, status := s.validator.Validate(req)
	if !valid {
		s.log.Debugf("query rejected: %s", msg)
		return entities.Result{Output: msg, Status: status}, nil
	}

	route, err := platform.Select(device)
	if err != nil {
		return entities.Result{}, err
	}
	profile, err := platform.Get(device.NOS)
	if err != nil {
		return entities.Result{}, err
	}
	credential, err := s.cfg.CredentialFor(device.Credential)
	if err != nil {
		return entities.Result{}, err
	}

	var result entities.Result
	switch route {
	case platform.RouteRest:
		payload, err := s.builder.BuildPayload(device, req)
		if err != nil {
			return entities.Result{}, err
		}
		executor := &transport.RestExecutor{
			Device:     device,
			Credential: credential,
			Payload:    payload,
			Client:     s.httpClient,
			Generic:    s.cfg.Messages.General,
			Log:        s.log,
		}
		result = executor.Run(ctx)

	case platform.RouteDirect:
		command, err := s.builder.BuildCommand(device, req)
		if err != nil {
			return entities.Result{}, err
		}
		executor := &transport.DirectExecutor{
			Device:     device,
			Credential: credential,
			Profile:    profile,
			Command:    command,
			Dial:       s.dial,
			Timeout:    s.cfg.SessionTimeout(),
			Generic:    s.cfg.Messages.General,
			Log:        s.log,
		}
		result = s.runBlocking(ctx, executor.Run)

	case platform.RouteProxied:
		command, err := s.builder.BuildCommand(device, req)
		if err != nil {
			return entities.Result{}, err
		}
		proxy, err := s.cfg.ProxyFor(device)
		if err != nil {
			return entities.Result{}, err
		}
		proxyCred, err := s.cfg.CredentialFor(proxy.Credential)
		if err != nil {
			return entities.Result{}, err
		}
		executor := &transport.ProxyExecutor{
			Device:     device,
			Credential: credential,
			Profile:    profile,
			Proxy:      proxy,
			ProxyCred:  proxyCred,
			Command:    command,
			Dial:       s.dial,
			Timeout:    s.cfg.SessionTimeout(),
			SettlePoll: s.cfg.SettlePoll(),
			SettleMax:  s.cfg.SettleMax(),
			Generic:    s.cfg.Messages.General,
			Log:        s.log,
		}
		result = s.runBlocking(ctx, executor.Run)
	}

	normalized, err := platform.Normalize(profile, req.Type, result.Output)
	if err != nil {
		s.log.Errorf("normalization failed for %s: %v", device.Name, err)
		return entities.Result{Output: s.cfg.Messages.ParseError, Status: entities.StatusInvalid}, err
	}
	result.Output = normalized

	return result, nil
}

// runBlocking hands an interactive execution to the worker pool so long
// sessions cannot stall concurrent REST requests, then awaits its result
func (s *QueryService) runBlocking(ctx context.Context, task worker.Task) entities.Result {
	ch, err := s.pool.Submit(ctx, task)
	if err != nil {
		s.log.Errorf("failed to schedule interactive execution: %v", err)
		return entities.Result{Output: s.cfg.Messages.General, Status: entities.StatusInvalid}
	}
	result, ok := <-ch
	if !ok {
		s.log.Errorf("interactive execution cancelled: %v", ctx.Err())
		return entities.Result{Output: s.cfg.Messages.General, Status: entities.StatusInvalid}
	}
	return result
}
