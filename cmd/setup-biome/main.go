package main

import "github.com/oshokin/setup-biome/cmd/setup-biome/cmd"

func main() {
	cmd.Execute()
}
