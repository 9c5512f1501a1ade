package entities

// Credential holds a username/secret pair for a device or proxy login
type Credential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// String keeps the secret out of logs and formatted output
func (c Credential) String() string {
	return c.Username + ":<redacted>"
}

// Device defines one queryable network device
type Device struct {
	Name       string `yaml:"-"`
	Address    string `yaml:"address"`
	Port       int    `yaml:"port"`
	NOS        string `yaml:"nos"`
	Transport  string `yaml:"transport"`
	Credential string `yaml:"credential"`
	Proxy      string `yaml:"proxy"`

	// Commands overrides the NOS profile command template per query type
	Commands map[QueryType]string `yaml:"commands"`
}

// Proxy defines a bastion host used to reach devices without direct access
type Proxy struct {
	Name       string `yaml:"-"`
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Credential string `yaml:"credential"`
	NOS        string `yaml:"nos"`

	// SSHCommand is the jump command template rendered per traversal with
	// {host}, {device_type}, {username} and {password} placeholders
	SSHCommand string `yaml:"ssh_command"`
}
