package main

import "github.com/xpump/platform/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
