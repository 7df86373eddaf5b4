package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ConfigFilename is the stack configuration file. LoadConfig searches for it
// starting from the working directory and walking up to the filesystem root.
const ConfigFilename = "wildrydes.yaml"

// userPoolArnPattern matches a Cognito user pool ARN at the syntax level.
// Whether the pool actually exists is only discovered at deploy time.
var userPoolArnPattern = regexp.MustCompile(`^arn:aws[\w-]*:cognito-idp:[\w-]+:\d{12}:userpool/[\w-]+$`)

// Config holds the stack inputs that vary between deployments.
// Everything else about the stack is fixed by the workshop.
type Config struct {
	// UserPoolArn is the ARN of the Cognito user pool backing the API
	// authorizer. The pool is created out-of-band with the Amplify CLI, so
	// the stack cannot derive it and requires it as explicit input.
	UserPoolArn string `yaml:"userPoolArn"`

	// Account and Region pin the deployment environment. Leaving both empty
	// keeps the stack environment-agnostic. Setting only one is an error.
	Account string `yaml:"account,omitempty"`
	Region  string `yaml:"region,omitempty"`

	// Branch is the Amplify deployment branch. Defaults to "master".
	Branch string `yaml:"branch,omitempty"`

	// FunctionCodeDir is the directory holding the built request-unicorn
	// handler bundle. The bundle is built outside this repository.
	// Defaults to "request_unicorn".
	FunctionCodeDir string `yaml:"functionCodeDir,omitempty"`

	// Outdir is where synth writes the cloud assembly. Defaults to "cdk.out".
	Outdir string `yaml:"outdir,omitempty"`
}

// LoadConfig reads and validates the configuration at path. If path is empty
// it searches for wildrydes.yaml walking up from the working directory.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return Config{}, fmt.Errorf("no %s found in the current directory or any parent", ConfigFilename)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Branch == "" {
		c.Branch = "master"
	}
	if c.FunctionCodeDir == "" {
		c.FunctionCodeDir = "request_unicorn"
	}
	if c.Outdir == "" {
		c.Outdir = "cdk.out"
	}
}

// Validate checks the config for mistakes that would otherwise surface as
// opaque failures at deploy time. It makes no AWS calls: the user pool ARN is
// only checked for shape, never for existence.
func (c Config) Validate() error {
	if c.UserPoolArn == "" {
		return fmt.Errorf("userPoolArn is required: create the user pool with the Amplify CLI and record its ARN here")
	}
	if !userPoolArnPattern.MatchString(c.UserPoolArn) {
		return fmt.Errorf("userPoolArn %q is not a Cognito user pool ARN", c.UserPoolArn)
	}
	if (c.Account == "") != (c.Region == "") {
		return fmt.Errorf("account and region must be set together")
	}
	return nil
}

// findConfigFile searches for wildrydes.yaml walking up from current directory.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, ConfigFilename)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
