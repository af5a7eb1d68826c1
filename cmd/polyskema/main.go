// Command polyskema builds discriminated-union schemas from a YAML class
// manifest.
//
//	polyskema -m classes.yaml classes
//	polyskema -m classes.yaml schema --format openapi --check
//	polyskema -m classes.yaml validate payload.json
//	polyskema -m classes.yaml examples circle
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
