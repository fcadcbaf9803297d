package main

import (
	"context"

	"deephole/cmd/deephole/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
