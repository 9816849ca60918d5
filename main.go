// ABOUTME: Entry point for the shaft CRM
// ABOUTME: Hands off to the cobra command tree in the cli package
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/shaft/cli"
)

const version = "0.1.0"

func main() {
	if err := cli.Execute(context.Background(), version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
