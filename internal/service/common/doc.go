// Package common holds helpers shared by several services.
//
// It lists the published CLI versions of the release registry, talks to the
// CI runner through workflow commands and the PATH, and inspects the host
// (platform details, running processes).
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
