package main

import "shastra/internal/cli"

func main() {
	cli.Execute()
}
