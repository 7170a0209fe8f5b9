package main

import (
	"fmt"
	"io"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "palette version %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildTime)
}
