package main

import (
	"github.com/jeeftor/rpa-runner/cmd"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

func main() {
	if err := cmd.Execute(); err != nil {
		utils.FatalError(err, "Error")
	}
}
