// Package setup wires configuration, version resolution and installation
// into the single run behind the setup-biome command.
package setup
