package main

import "github.com/ppiankov/cmdwatch/internal/cli"

func main() {
	cli.Execute()
}
