package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/platform"
)

const (
	DefaultRestTimeout     = 7 * time.Second
	DefaultSessionTimeout  = 90 * time.Second
	DefaultSettlePoll      = 250 * time.Millisecond
	DefaultSettleMax       = 2 * time.Second
	DefaultGeneralMessage  = "An error occurred while querying the device."
	DefaultParseMessage    = "Unable to parse the query output."
	DefaultInvalidMessage  = "Invalid query."
	DefaultInteractivePort = 22
	DefaultTelnetPort      = 23
)

// Messages holds the user-safe strings returned on failure paths
type Messages struct {
	General      string `yaml:"general"`
	ParseError   string `yaml:"parse_error"`
	InvalidQuery string `yaml:"invalid_query"`
}

// Timeouts bounds every transport interaction
type Timeouts struct {
	RestSeconds       int `yaml:"rest_seconds"`
	SessionSeconds    int `yaml:"session_seconds"`
	ProxySettlePollMS int `yaml:"proxy_settle_poll_ms"`
	ProxySettleMaxMS  int `yaml:"proxy_settle_max_ms"`
}

// Config is the whole static configuration, loaded once at startup and
// read-only thereafter; it is passed into constructors, never read as a global
type Config struct {
	Credentials map[string]entities.Credential `yaml:"credentials"`
	Proxies     map[string]*entities.Proxy     `yaml:"proxies"`
	Devices     map[string]*entities.Device    `yaml:"devices"`
	Messages    Messages                       `yaml:"messages"`
	Timeouts    Timeouts                       `yaml:"timeouts"`
}

// Load reads, parses and validates the YAML configuration file. Every cross
// reference (device to credential, device to proxy, proxy to credential,
// NOS to platform profile) is resolved here so requests cannot hit a
// configuration fault at query time.
func Load(yamlFile string) (*Config, error) {
	data, err := os.ReadFile(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %v", yamlFile, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %v", err)
	}

	if len(cfg.Devices) == 0 {
		return nil, fmt.Errorf("no devices defined in the YAML configuration")
	}

	if cfg.Messages.General == "" {
		cfg.Messages.General = DefaultGeneralMessage
	}
	if cfg.Messages.ParseError == "" {
		cfg.Messages.ParseError = DefaultParseMessage
	}
	if cfg.Messages.InvalidQuery == "" {
		cfg.Messages.InvalidQuery = DefaultInvalidMessage
	}

	for name, cred := range cfg.Credentials {
		if cred.Username == "" || cred.Password == "" {
			return nil, fmt.Errorf("credential %s must define username and password", name)
		}
	}

	for name, proxy := range cfg.Proxies {
		proxy.Name = name
		if proxy.Address == "" {
			return nil, fmt.Errorf("proxy %s: address is required", name)
		}
		if proxy.Username == "" {
			return nil, fmt.Errorf("proxy %s: username is required", name)
		}
		if _, ok := cfg.Credentials[proxy.Credential]; !ok {
			return nil, fmt.Errorf("proxy %s references unknown credential %s", name, proxy.Credential)
		}
		if proxy.SSHCommand == "" {
			return nil, fmt.Errorf("proxy %s: ssh_command is required", name)
		}
		profile, err := platform.Get(proxy.NOS)
		if err != nil {
			return nil, fmt.Errorf("proxy %s: %v", name, err)
		}
		if profile.Kind != platform.KindBastion {
			return nil, fmt.Errorf("proxy %s: NOS %s is not a bastion profile", name, proxy.NOS)
		}
	}

	for name, device := range cfg.Devices {
		device.Name = name
		if device.Address == "" {
			return nil, fmt.Errorf("device %s: address is required", name)
		}
		if _, ok := cfg.Credentials[device.Credential]; !ok {
			return nil, fmt.Errorf("device %s references unknown credential %s", name, device.Credential)
		}
		if device.Proxy != "" {
			if _, ok := cfg.Proxies[device.Proxy]; !ok {
				return nil, fmt.Errorf("device %s references unknown proxy %s", name, device.Proxy)
			}
		}

		// Fail fast on unknown NOS or an impossible transport pairing
		route, err := platform.Select(device)
		if err != nil {
			return nil, err
		}

		device.Transport = strings.ToLower(strings.TrimSpace(device.Transport))
		switch route {
		case platform.RouteRest:
			if device.Transport != "" {
				return nil, fmt.Errorf("device %s: transport is not applicable to REST devices", name)
			}
			if device.Port == 0 {
				return nil, fmt.Errorf("device %s: port is required for REST devices", name)
			}
		default:
			if device.Transport == "" {
				device.Transport = "ssh"
			}
			if device.Transport != "ssh" && device.Transport != "telnet" {
				return nil, fmt.Errorf("transport %s is invalid for device %s, must be 'ssh' or 'telnet'", device.Transport, name)
			}
			if route == platform.RouteProxied && device.Transport != "ssh" {
				return nil, fmt.Errorf("device %s: proxied devices are reached over ssh only", name)
			}
			if device.Port == 0 {
				if device.Transport == "telnet" {
					device.Port = DefaultTelnetPort
				} else {
					device.Port = DefaultInteractivePort
				}
			}
		}
	}

	return &cfg, nil
}

// Device resolves a location identifier to its device configuration
func (c *Config) Device(location string) (*entities.Device, error) {
	device, ok := c.Devices[location]
	if !ok {
		return nil, fmt.Errorf("unknown location: %s", location)
	}
	return device, nil
}

// CredentialFor returns the credential a device or proxy references
func (c *Config) CredentialFor(ref string) (entities.Credential, error) {
	cred, ok := c.Credentials[ref]
	if !ok {
		return entities.Credential{}, fmt.Errorf("unknown credential: %s", ref)
	}
	return cred, nil
}

// ProxyFor resolves a device's proxy reference
func (c *Config) ProxyFor(device *entities.Device) (*entities.Proxy, error) {
	proxy, ok := c.Proxies[device.Proxy]
	if !ok {
		return nil, fmt.Errorf("device %s references unknown proxy %s", device.Name, device.Proxy)
	}
	return proxy, nil
}

// RestTimeout returns the REST call bound
func (c *Config) RestTimeout() time.Duration {
	if c.Timeouts.RestSeconds <= 0 {
		return DefaultRestTimeout
	}
	return time.Duration(c.Timeouts.RestSeconds) * time.Second
}

// SessionTimeout returns the interactive read bound
func (c *Config) SessionTimeout() time.Duration {
	if c.Timeouts.SessionSeconds <= 0 {
		return DefaultSessionTimeout
	}
	return time.Duration(c.Timeouts.SessionSeconds) * time.Second
}

// SettlePoll returns the proxy negotiation poll interval
func (c *Config) SettlePoll() time.Duration {
	if c.Timeouts.ProxySettlePollMS <= 0 {
		return DefaultSettlePoll
	}
	return time.Duration(c.Timeouts.ProxySettlePollMS) * time.Millisecond
}

// SettleMax returns the proxy negotiation read deadline
func (c *Config) SettleMax() time.Duration {
	if c.Timeouts.ProxySettleMaxMS <= 0 {
		return DefaultSettleMax
	}
	return time.Duration(c.Timeouts.ProxySettleMaxMS) * time.Millisecond
}
