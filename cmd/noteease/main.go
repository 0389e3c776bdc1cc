package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/noteease/pkg/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage turns err into the line shown to the user.
func errorMessage(err error) string {
	if errors.Is(err, core.ErrNotFound) {
		return "Note not found."
	}
	return "Error: " + err.Error()
}
