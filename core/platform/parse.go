package platform

import (
	"strings"

	"github.com/carlosrabelo/mirante/core/domain/entities"
)

// afiSectionCount is how many address family sections protocol agnostic
// lookups keep: IPv4 then IPv6, in command output order.
const afiSectionCount = 2

// Normalize extracts the IPv4 and IPv6 address family sections from raw
// command output. Community and AS path lookups run protocol agnostic
// commands whose output interleaves every address family; only the first
// two sections after the delimiter are relevant. Output of other query
// types, and of NOS families without a delimiter, passes through unchanged.
func Normalize(profile *Profile, queryType entities.QueryType, raw string) (string, error) {
	if queryType != entities.QueryBGPCommunity && queryType != entities.QueryBGPASPath {
		return raw, nil
	}
	if profile.AFIDelimiter == "" {
		return raw, nil
	}

	// sections[0] is the preamble before the first delimiter and is dropped
	sections := strings.Split(raw, profile.AFIDelimiter)
	if len(sections) < afiSectionCount+1 {
		return "", &entities.MalformedOutputError{
			NOS:      profile.NOS,
			Expected: afiSectionCount,
			Found:    len(sections) - 1,
		}
	}

	var normalized strings.Builder
	for _, section := range sections[1 : afiSectionCount+1] {
		normalized.WriteString(profile.AFIDelimiter)
		normalized.WriteString(section)
	}
	return normalized.String(), nil
}
