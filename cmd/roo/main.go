package main

import (
	"github.com/UOW-TronSoc/ARCH2025-Roo/cmd/roo/cmd"
)

func main() {
	cmd.Execute()
}
