package main

import "libraryhub/cmd/cli/command"

func main() {
	command.Execute()
}
