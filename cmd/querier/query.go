package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/metadata"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

const prompt = "QUERY :> "

func queryCommand() cli.Command {
	return cli.Command{
		Name:  "query",
		Usage: "evaluate queries from --query or line by line from stdin",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "query, q",
				Usage: "evaluate a single query and exit",
			},
			cli.BoolFlag{
				Name:  "no-prompt",
				Usage: "never print the interactive prompt",
			},
		},
		Action: runQuery,
	}
}

func runQuery(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx, err := loadIndex(cfg.Index)
	if err != nil {
		return err
	}
	normalizer, err := loadNormalizer(cfg.Index)
	if err != nil {
		return err
	}
	store, err := metadata.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMetadataUnavailable, err)
	}
	defer store.Close()

	if c.IsSet("query") {
		exec := executor.New(idx, store, executor.WithNormalizer(normalizer))
		code := evaluate(ctx, exec, c.String("query"), os.Stdout, os.Stderr)
		return exitWith(code)
	}

	exec := executor.New(idx, store,
		executor.WithNormalizer(normalizer),
		executor.WithQueryLogLevel(slog.LevelDebug),
	)
	showPrompt := !c.Bool("no-prompt") && isTerminal(os.Stdin)
	return exitWith(session(ctx, exec, os.Stdin, os.Stdout, os.Stderr, showPrompt))
}

// session evaluates one query per input line until EOF or cancellation and
// returns the worst exit code seen. A failing query does not end the
// session.
func session(ctx context.Context, exec *executor.Executor, in io.Reader, out, errOut io.Writer, showPrompt bool) int {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	worst := apperrors.ExitOK
	for {
		if showPrompt {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if code := evaluate(ctx, exec, scanner.Text(), out, errOut); code > worst {
			worst = code
		}
	}
	if showPrompt {
		fmt.Fprintln(out)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "reading queries: %v\n", err)
		return apperrors.ExitFailure
	}
	return worst
}

func evaluate(ctx context.Context, exec *executor.Executor, line string, out, errOut io.Writer) int {
	err := exec.Run(ctx, line, out)
	if err == nil {
		return apperrors.ExitOK
	}
	var qerr *apperrors.QueryError
	if apperrors.As(err, &qerr) {
		fmt.Fprintf(errOut, "Invalid query: %s\n", qerr.Reason)
	} else {
		fmt.Fprintf(errOut, "Query failed: %v\n", err)
	}
	return apperrors.ExitCode(err)
}

// exitWith maps a non-zero code to a cli exit error; the message has already
// been printed.
func exitWith(code int) error {
	if code == apperrors.ExitOK {
		return nil
	}
	return cli.NewExitError("", code)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
