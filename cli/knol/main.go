package main

import (
	"os"

	knolcmder "github.com/knolhq/knol/cmd/knol"
)

func main() {
	cmd := knolcmder.NewKnolCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
