package main

import "github.com/veryresto/pingmo/internal/cli"

func main() {
	cli.Execute()
}
