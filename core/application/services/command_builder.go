package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/platform"
)

// restQuery is the JSON body a device-side query agent expects
type restQuery struct {
	QueryType string `json:"query_type"`
	Target    string `json:"target"`
}

// TemplateBuilder renders per-NOS command templates into transport input.
// Device level template overrides take precedence over the NOS profile.
type TemplateBuilder struct{}

// NewTemplateBuilder creates the default command builder
func NewTemplateBuilder() *TemplateBuilder {
	return &TemplateBuilder{}
}

// BuildPayload produces the JSON body for a REST capable device
func (b *TemplateBuilder) BuildPayload(device *entities.Device, req entities.QueryRequest) ([]byte, error) {
	payload, err := json.Marshal(restQuery{
		QueryType: string(req.Type),
		Target:    req.Target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %v", device.Name, err)
	}
	return payload, nil
}

// BuildCommand renders the command string for an interactive device
func (b *TemplateBuilder) BuildCommand(device *entities.Device, req entities.QueryRequest) (string, error) {
	template, ok := device.Commands[req.Type]
	if !ok {
		profile, err := platform.Get(device.NOS)
		if err != nil {
			return "", err
		}
		template, ok = profile.Commands[req.Type]
		if !ok {
			return "", fmt.Errorf("no command template for %s on NOS %s", req.Type, device.NOS)
		}
	}
	return strings.ReplaceAll(template, "{target}", req.Target), nil
}
