package main

import "github.com/chime-audio/chime/internal/cli"

func main() {
	cli.Execute()
}
