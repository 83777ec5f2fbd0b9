package config

import (
	"time"
)

// SvcctlConfig is the top-level configuration structure for svcctl.
type SvcctlConfig struct {
	Logging   LoggingConfig       `yaml:"logging"`
	Container ContainerConfig     `yaml:"container"`
	Services  []ServiceDefinition `yaml:"services"`
}

// LoggingConfig controls the log sink.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "debug", "info", "warn" or "error"
}

// ContainerConfig holds the waits applied by the service container.
type ContainerConfig struct {
	ReadyTimeout time.Duration `yaml:"readyTimeout,omitempty"` // How long GetService waits for Running (0 = no limit)
	StopTimeout  time.Duration `yaml:"stopTimeout,omitempty"`  // How long shutdown waits for termination (0 = no limit)
	EventBuffer  int           `yaml:"eventBuffer,omitempty"`  // Buffer of the lifecycle event subscription
}

// ServiceKind selects the built-in implementation of a service.
type ServiceKind string

const (
	ServiceKindHeartbeat ServiceKind = "heartbeat"
	ServiceKindKVStore   ServiceKind = "kvstore"
)

// KnownKinds lists the kinds svcctl can run.
var KnownKinds = []ServiceKind{ServiceKindHeartbeat, ServiceKindKVStore}

// ServiceDefinition describes one service started by `svcctl run`.
type ServiceDefinition struct {
	Name    string      `yaml:"name"`             // Unique display name, e.g. "beat"
	Kind    ServiceKind `yaml:"kind"`             // "heartbeat" or "kvstore"
	Enabled bool        `yaml:"enabledByDefault"` // Whether `run` starts it

	// Fields for Kind = "heartbeat"
	Interval time.Duration `yaml:"interval,omitempty"` // Time between beats
	Lifetime time.Duration `yaml:"lifetime,omitempty"` // Stop by itself after this long (0 = never)

	// Fields for Kind = "kvstore"
	StartDelay time.Duration `yaml:"startDelay,omitempty"` // Simulated warm-up before Running
}
