package main

import "github.com/HelloDave666/mcp-workspace/internal/cli"

func main() {
	cli.Execute()
}
