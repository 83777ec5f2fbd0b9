package config

import (
	"time"
)

const (
	DefaultLogLevel     = "info"
	DefaultReadyTimeout = 10 * time.Second
	DefaultStopTimeout  = 30 * time.Second
	DefaultEventBuffer  = 64
	DefaultInterval     = time.Second
)

// GetDefaultConfig returns the default configuration for svcctl: one
// heartbeat and one key-value store, both enabled.
func GetDefaultConfig() SvcctlConfig {
	return SvcctlConfig{
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
		Container: ContainerConfig{
			ReadyTimeout: DefaultReadyTimeout,
			StopTimeout:  DefaultStopTimeout,
			EventBuffer:  DefaultEventBuffer,
		},
		Services: []ServiceDefinition{
			{
				Name:     "heartbeat",
				Kind:     ServiceKindHeartbeat,
				Enabled:  true,
				Interval: DefaultInterval,
			},
			{
				Name:    "kvstore",
				Kind:    ServiceKindKVStore,
				Enabled: true,
			},
		},
	}
}
