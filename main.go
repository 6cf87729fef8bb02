package main

import "github.com/runx-dev/runx/cmd"

func main() {
	cmd.Execute()
}
