package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/sujalbistaa/mysite/internal/manage"
)

func main() {
	if err := manage.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "🚨 %v\n", err)
		os.Exit(1)
	}
}
