package main

import "github.com/logview-dev/logview/internal/cmd"

func main() {
	cmd.Execute()
}
