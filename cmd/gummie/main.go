package main

import (
	"gummiebot/cmd/gummie/commands"
	"gummiebot/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
