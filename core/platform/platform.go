package platform

import (
	"fmt"
	"strings"

	"github.com/carlosrabelo/mirante/core/domain/entities"
)

// Kind classifies how a NOS is reached
type Kind int

const (
	// KindRest devices run a device-side query agent spoken to over HTTP
	KindRest Kind = iota
	// KindScrape devices are driven over an interactive terminal session
	KindScrape
	// KindBastion profiles exist only as proxy hops, never as query targets
	KindBastion
)

// Route is the transport family chosen for one device
type Route int

const (
	RouteRest Route = iota
	RouteDirect
	RouteProxied
)

// Profile describes one network operating system: how to reach it, how its
// terminal behaves and how its output is sectioned
type Profile struct {
	NOS            string
	Kind           Kind
	PromptSuffixes []string
	PagingCommand  string

	// AFIDelimiter splits multi family BGP output; empty means no sectioning
	AFIDelimiter string

	Commands map[entities.QueryType]string
}

var registry = map[string]*Profile{
	"cisco_ios": {
		NOS:            "cisco_ios",
		Kind:           KindScrape,
		PromptSuffixes: []string{"#", ">"},
		PagingCommand:  "terminal length 0",
		AFIDelimiter:   "For address family: ",
		Commands: map[entities.QueryType]string{
			entities.QueryBGPRoute:     "show bgp all {target}",
			entities.QueryBGPCommunity: "show bgp all community {target}",
			entities.QueryBGPASPath:    "show bgp all quote-regexp \"{target}\"",
			entities.QueryPing:         "ping {target} repeat 5",
			entities.QueryTraceroute:   "traceroute {target} timeout 1 probe 2",
		},
	},
	"cisco_xr": {
		NOS:            "cisco_xr",
		Kind:           KindScrape,
		PromptSuffixes: []string{"#"},
		PagingCommand:  "terminal length 0",
		AFIDelimiter:   "Address Family: ",
		Commands: map[entities.QueryType]string{
			entities.QueryBGPRoute:     "show bgp all unicast {target}",
			entities.QueryBGPCommunity: "show bgp all unicast community {target}",
			entities.QueryBGPASPath:    "show bgp all unicast regexp {target}",
			entities.QueryPing:         "ping {target} count 5",
			entities.QueryTraceroute:   "traceroute {target} timeout 1 probe 2",
		},
	},
	"juniper": {
		NOS:            "juniper",
		Kind:           KindScrape,
		PromptSuffixes: []string{">", "#"},
		PagingCommand:  "set cli screen-length 0",
		Commands: map[entities.QueryType]string{
			entities.QueryBGPRoute:     "show route {target}",
			entities.QueryBGPCommunity: "show route community {target} detail",
			entities.QueryBGPASPath:    "show route aspath-regex {target}",
			entities.QueryPing:         "ping {target} count 5",
			entities.QueryTraceroute:   "traceroute {target} wait 1",
		},
	},
	"frr": {
		NOS:  "frr",
		Kind: KindRest,
	},
	"bird": {
		NOS:  "bird",
		Kind: KindRest,
	},
	"linux_ssh": {
		NOS:            "linux_ssh",
		Kind:           KindBastion,
		PromptSuffixes: []string{"$", "#"},
	},
}

// Get returns the profile for a normalized NOS identifier
func Get(nos string) (*Profile, error) {
	profile, ok := registry[normalizeNOS(nos)]
	if !ok {
		return nil, fmt.Errorf("unknown NOS identifier: %s", nos)
	}
	return profile, nil
}

// Supported returns every NOS identifier usable as a device target
func Supported() []string {
	out := make([]string, 0, len(registry))
	for nos, profile := range registry {
		if profile.Kind == KindBastion {
			continue
		}
		out = append(out, nos)
	}
	return out
}

// Select maps a device to exactly one transport family. A device resolves to
// REST xor interactive; only interactive devices may sit behind a proxy.
func Select(device *entities.Device) (Route, error) {
	profile, err := Get(device.NOS)
	if err != nil {
		return 0, err
	}
	switch profile.Kind {
	case KindRest:
		if device.Proxy != "" {
			return 0, fmt.Errorf("device %s: REST NOS %s cannot be proxied", device.Name, device.NOS)
		}
		return RouteRest, nil
	case KindScrape:
		if device.Proxy != "" {
			return RouteProxied, nil
		}
		return RouteDirect, nil
	default:
		return 0, fmt.Errorf("device %s: NOS %s is a bastion profile, not a query target", device.Name, device.NOS)
	}
}

func normalizeNOS(nos string) string {
	return strings.ToLower(strings.TrimSpace(nos))
}
