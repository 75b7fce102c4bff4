package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/svndiff/svndiff/internal/config"
	"github.com/svndiff/svndiff/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  diff    Compare two targets and print a unified diff\n")
		fmt.Fprintf(os.Stderr, "  patch   Parse a patch file and report its structure\n")
		fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for command-specific options.\n", os.Args[0])
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	lg := logger.NewFromEnv()
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		lg.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "diff":
		runDiff(os.Args[2:], cfg, lg)
	case "patch":
		runPatch(os.Args[2:], lg)
	case "-h", "--help", "help":
		flag.Usage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func handleCommandError(op string, err error) {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n\n", op, err)
	fmt.Fprintf(os.Stderr, "Troubleshooting tips:\n")
	fmt.Fprintf(os.Stderr, "1. Check that the given paths and revisions exist\n")
	fmt.Fprintf(os.Stderr, "2. Verify the patch file is a well-formed unified or git-extended diff\n")
	fmt.Fprintf(os.Stderr, "3. Use 'patch -show-hunks' to inspect how a patch file parses\n")
	os.Exit(1)
}
