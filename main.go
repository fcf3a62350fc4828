package main

import "sophie-analyst/internal/cli"

func main() {
	cli.Execute()
}
