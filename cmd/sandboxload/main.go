package main

import "github.com/moffa90/go-sandbox/internal/cli"

func main() {
	cli.Execute()
}
