package main

import "yamdb/cmd/import/command"

func main() {
	command.Execute()
}
