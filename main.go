package main

import "logsplit/internal/cmd"

func main() {
	cmd.Execute()
}
