package main

import "github.com/valtlai/agent-history/cmd"

func main() {
	cmd.Execute()
}
