package main

import "cortexmap/cmd/cortexmap-cli/cmd"

func main() {
	cmd.Execute()
}
