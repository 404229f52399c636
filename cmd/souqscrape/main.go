package main

import (
	"context"
	"souqscrape/cmd/souqscrape/commands"
	"souqscrape/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "souqscrape")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
