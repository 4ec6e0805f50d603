// Package main is the entry point for the snip CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"snippet_find/internal/app"
)

func main() {
	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
