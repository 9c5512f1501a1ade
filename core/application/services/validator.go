package services

import (
	"net"
	"strings"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/infrastructure/config"
)

// BasicValidator performs the structural checks every query needs before
// any transport work. Policy validation (blacklists, prefix length limits)
// is an external collaborator and plugs in behind the same port.
type BasicValidator struct {
	messages config.Messages
}

// NewBasicValidator creates the default validator
func NewBasicValidator(messages config.Messages) *BasicValidator {
	return &BasicValidator{messages: messages}
}

// Validate checks the query shape; the message is caller facing
func (v *BasicValidator) Validate(req entities.QueryRequest) (bool, string, entities.Status) {
	if !req.Type.IsValid() {
		return false, v.messages.InvalidQuery, entities.StatusInvalid
	}
	target := strings.TrimSpace(req.Target)
	if target == "" {
		return false, v.messages.InvalidQuery, entities.StatusInvalid
	}

	// route lookups take an address or prefix; other query types also
	// accept hostnames and regex style input
	if req.Type == entities.QueryBGPRoute {
		if net.ParseIP(target) == nil {
			if _, _, err := net.ParseCIDR(target); err != nil {
				return false, v.messages.InvalidQuery, entities.StatusInvalid
			}
		}
	}
	return true, "", entities.StatusValid
}
