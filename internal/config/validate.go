package config

import (
	"errors"
	"fmt"
	"slices"

	"svcctl/pkg/logging"
)

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid configuration: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// Validate checks the configuration for values svcctl cannot run with.
func (c SvcctlConfig) Validate() error {
	var problems []string

	if c.Logging.Level != "" {
		if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if c.Container.ReadyTimeout < 0 {
		problems = append(problems, "container.readyTimeout must not be negative")
	}
	if c.Container.StopTimeout < 0 {
		problems = append(problems, "container.stopTimeout must not be negative")
	}
	if c.Container.EventBuffer < 0 {
		problems = append(problems, "container.eventBuffer must not be negative")
	}

	names := make(map[string]bool)
	kinds := make(map[ServiceKind]string)
	for i, svc := range c.Services {
		if svc.Name == "" {
			problems = append(problems, fmt.Sprintf("services[%d]: name is required", i))
		} else if names[svc.Name] {
			problems = append(problems, fmt.Sprintf("services[%d]: duplicate name %q", i, svc.Name))
		}
		names[svc.Name] = true

		if !slices.Contains(KnownKinds, svc.Kind) {
			problems = append(problems, fmt.Sprintf("service %q: unknown kind %q", svc.Name, svc.Kind))
		} else if other, ok := kinds[svc.Kind]; ok {
			// The container holds one instance per type.
			problems = append(problems, fmt.Sprintf("service %q: kind %q is already used by %q", svc.Name, svc.Kind, other))
		} else {
			kinds[svc.Kind] = svc.Name
		}

		if svc.Interval < 0 || svc.Lifetime < 0 || svc.StartDelay < 0 {
			problems = append(problems, fmt.Sprintf("service %q: durations must not be negative", svc.Name))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Service returns the definition named name
func (c SvcctlConfig) Service(name string) (ServiceDefinition, bool) {
	for _, svc := range c.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return ServiceDefinition{}, false
}
