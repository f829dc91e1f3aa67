package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/setanarut/repix/internal/app"
	"github.com/setanarut/repix/internal/cli"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run holds the real program logic so tests can drive it with an arbitrary
// output writer and argument list.
func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := app.NewLogger(cfg.Verbosity, os.Stderr)
	return app.New(*cfg, logger).Run(context.Background())
}
