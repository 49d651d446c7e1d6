package main

import "github.com/dbehnke/relaisblick/cmd/relaisblick/cmd"

var version = "dev" // set by the linker

func main() {
	cmd.Execute(version)
}
