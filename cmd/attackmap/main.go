package main

import (
	"fmt"
	"os"

	"github.com/yildizm/attackmap/internal/ai/providers/ollama"
	"github.com/yildizm/attackmap/internal/ai/providers/openai"
	"github.com/yildizm/attackmap/internal/cli"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := ollama.Register(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register ollama provider: %v\n", err)
		os.Exit(1)
	}
	if err := openai.Register(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register openai provider: %v\n", err)
		os.Exit(1)
	}

	cmd := cli.NewRootCommand(version, commit, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
