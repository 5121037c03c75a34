// Package installer locates the Biome CLI release for a resolved version,
// picks the asset built for the target platform, downloads it and installs
// it as an executable on the job's PATH.
package installer
