package main

import "github.com/claude/fitplay/cmd/fitplay-player/commands"

func main() {
	commands.Execute()
}
