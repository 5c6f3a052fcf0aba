package main

import "github.com/mcoot/spiderleague/internal/cli"

func main() {
	cli.Execute()
}
