// Package config defines the settings of a setup-biome run and provides
// helpers to load them from an optional YAML file, overlay GitHub Actions
// inputs from the environment and validate the result.
package config
