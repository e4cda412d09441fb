// Command ladderctl parses, validates, stores and quotes ladder prices.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/erp/ladderprice/internal/infrastructure/logger"
	"github.com/erp/ladderprice/internal/interfaces/cli"
	"github.com/google/uuid"
)

const usage = `ladderctl manages quantity-tiered (ladder) prices

Usage:
  ladderctl [global flags] <command> [flags] [arguments]

Commands:
  parse [text]          Parse vendor ladder text (argument or stdin) without storing it
  validate              Check a ladder given as JSON on stdin
  set                   Store a ladder given as JSON on stdin (-tenant, -product)
  import [text]         Parse vendor text and store it as the ladder (-tenant, -product, -source)
  show                  Print a stored ladder (-tenant, -product)
  quote <quantity>      Price a quantity against a stored ladder (-tenant, -product)

Global flags:
  -config string        Config file (default: ./config.toml if present)
  -json                 Write results and errors as JSON

Ladder JSON is either {"ranges": [...]} or a bare array of
{"min_quantity": 1, "max_quantity": 9, "unit_price": "5.00"}; omit max_quantity for the last range.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("ladderctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "config file")
	asJSON := global.Bool("json", false, "write JSON")
	if err := global.Parse(args); err != nil {
		return cli.ExitUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return cli.ExitUsage
	}
	command, cmdArgs := rest[0], rest[1:]

	cmd := flag.NewFlagSet(command, flag.ContinueOnError)
	cmd.SetOutput(stderr)
	tenant := cmd.String("tenant", "", "tenant ID")
	product := cmd.String("product", "", "product ID")
	source := cmd.String("source", "", "where the vendor text came from")
	if err := cmd.Parse(cmdArgs); err != nil {
		return cli.ExitUsage
	}

	var (
		withStore           bool
		tenantID, productID uuid.UUID
	)
	switch command {
	case "parse", "validate":
	case "set", "import", "show", "quote":
		withStore = true
		var err error
		if tenantID, productID, err = parseIDs(*tenant, *product); err != nil {
			fmt.Fprintf(stderr, "ladderctl: %v\n", err)
			return cli.ExitUsage
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		global.Usage()
		return cli.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, *configPath, withStore)
	if err != nil {
		fmt.Fprintf(stderr, "ladderctl: %v\n", err)
		return cli.ExitInternal
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.Close(shutdownCtx)
	}()

	ctx = logger.WithContext(ctx, a.log)
	ctx = logger.WithCommand(ctx, command)

	runner := cli.NewRunner(a.service, stdin, stdout, *asJSON)
	err = dispatch(ctx, runner, command, cmd.Args(), stdin, tenantID, productID, *source)
	if err != nil {
		runner.WriteError(stderr, err)
	}
	return cli.ExitCode(err)
}

func dispatch(ctx context.Context, r *cli.Runner, command string, args []string, stdin io.Reader, tenantID, productID uuid.UUID, source string) error {
	switch command {
	case "parse":
		text, err := textArg(args, stdin)
		if err != nil {
			return err
		}
		return r.Parse(ctx, text)
	case "validate":
		return r.Validate(ctx)
	case "set":
		return r.Set(ctx, tenantID, productID)
	case "import":
		text, err := textArg(args, stdin)
		if err != nil {
			return err
		}
		return r.Import(ctx, tenantID, productID, text, source)
	case "show":
		return r.Show(ctx, tenantID, productID)
	case "quote":
		if len(args) != 1 {
			return &cli.UsageError{Message: "quote takes exactly one quantity"}
		}
		quantity, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return &cli.UsageError{Message: fmt.Sprintf("invalid quantity %q", args[0])}
		}
		return r.Quote(ctx, tenantID, productID, quantity)
	}
	return &cli.UsageError{Message: "unknown command " + command}
}

// textArg joins the positional arguments, or reads stdin when there are none
func textArg(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parseIDs(tenant, product string) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return uuid.Nil, uuid.Nil, &cli.UsageError{Message: "-tenant must be a UUID"}
	}
	productID, err := uuid.Parse(product)
	if err != nil {
		return uuid.Nil, uuid.Nil, &cli.UsageError{Message: "-product must be a UUID"}
	}
	return tenantID, productID, nil
}
