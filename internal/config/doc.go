// Package config provides configuration management for svcctl.
//
// This package implements a layered configuration system. Configuration is
// loaded from multiple sources and merged in order, with later sources
// overriding earlier ones.
//
// # Configuration Layers
//
//  1. Default Configuration (GetDefaultConfig)
//     - One heartbeat and one key-value store, sensible timeouts
//
//  2. User Configuration (~/.config/svcctl/config.yaml)
//     - Personal overrides that apply everywhere
//
//  3. Project Configuration (./.svcctl/config.yaml)
//     - Settings for the current directory, shareable via version control
//
// Passing --config replaces layers 2 and 3 with a single file.
//
// # Configuration Structure
//
//	logging:
//	  level: debug
//
//	container:
//	  readyTimeout: 10s
//	  stopTimeout: 30s
//	  eventBuffer: 64
//
//	services:
//	  - name: heartbeat
//	    kind: heartbeat
//	    enabledByDefault: true
//	    interval: 500ms
//	    lifetime: 1m
//	  - name: kvstore
//	    kind: kvstore
//	    enabledByDefault: true
//	    startDelay: 2s
//
// # Merging Behavior
//
//   - Scalar fields: a non-zero value in a later layer wins
//   - Services: merged by name; a later definition replaces the earlier one
//     entirely, new names are added
//
// # Validation
//
// Validate rejects unknown kinds, duplicate names, a kind used twice (the
// container holds one instance per type), negative durations and unknown
// log levels. All problems are reported in one ValidationError.
package config
