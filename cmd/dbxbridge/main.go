package main

import (
	"dbxbridge/cmd/dbxbridge/commands"
	"dbxbridge/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
