package main

import (
	"github.com/bryanspearman/event-listener-server/cmd/server/cmd"
)

func main() {
	cmd.Execute()
}
