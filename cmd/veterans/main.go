// veterans is the command-line client for the veterans verification API.
//
// Usage:
//
//	veterans configure --api-key <key> [--api-url <url>]
//	veterans verify --first-name F --last-name L --birth YYYY-MM-DD --branch B --email E
//	veterans upload [--type DD214] <verification-id> <file>
//	veterans lookup [--first-name F] [--last-name L] [--source all|grave|vlm|army]
//	veterans history [--page N] [--limit N]
//	veterans status <verification-id>
//	veterans version
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "veterans version %s\n", version)
		return 0
	case "configure":
		err = cmdConfigure(rest, stdout)
	case "verify":
		err = cmdVerify(ctx, rest, stdout)
	case "upload":
		err = cmdUpload(ctx, rest, stdout)
	case "lookup":
		err = cmdLookup(ctx, rest, stdout)
	case "history":
		err = cmdHistory(ctx, rest, stdout)
	case "status":
		err = cmdStatus(ctx, rest, stdout)
	default:
		fmt.Fprintf(stderr, "veterans: unknown command %q\n\n", cmd)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		fmt.Fprintf(stderr, "veterans: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `veterans %s

Usage:
  veterans <command> [flags]

Commands:
  configure   Save the API key and URL to ~/.veterans-cli/config.yaml
  verify      Create and submit a verification
  upload      Upload a supporting document for a verification
  lookup      Search VA records
  history     List past verifications
  status      Show the status of a verification
  version     Print the version
`, version)
}
