package main

import "github.com/mhollis/bounce/internal/cli"

func main() {
	cli.Execute()
}
