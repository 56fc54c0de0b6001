package main

import (
	"os"

	"resource-base/internal/app/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
