package main

import (
	"os"

	"github.com/pkonowrocki/allegro-cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
