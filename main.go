package main

import (
	"fmt"
	"os"

	"github.com/maxkimambo/envup/cmd"
	apperrors "github.com/maxkimambo/envup/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, apperrors.FormatForCLI(err))
		os.Exit(1)
	}
}
