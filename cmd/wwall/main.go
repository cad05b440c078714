package main

import (
	"github.com/whisperwall/whisperwall/internal/cli"
)

func main() {
	cli.Execute()
}
