// Package config provides the configuration of a topwords run.
// It defines the defaults, the optional YAML configuration file and
// the validation performed before any network activity.
package config
