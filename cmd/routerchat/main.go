package main

import "github.com/diogo/routerchat/internal/commands"

func main() {
	commands.Execute()
}
