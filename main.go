package main

import (
	"os"

	"github.com/ccdmb/catastrophy/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
