package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/metadata"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

func importCommand() cli.Command {
	return cli.Command{
		Name:  "import",
		Usage: "copy URLs from a crawler directory into the configured metadata backend",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "from", Usage: "crawler output directory"},
		},
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	from := c.String("from")
	if from == "" {
		return fmt.Errorf("%w: import needs --from", apperrors.ErrInvalidInput)
	}
	if cfg.Metadata.Backend == "dir" {
		return fmt.Errorf("%w: import target must be redis, postgres or sqlite", apperrors.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := metadata.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMetadataUnavailable, err)
	}
	defer store.Close()
	dst, ok := store.(metadata.Writer)
	if !ok {
		return fmt.Errorf("%w: backend %s is read-only", apperrors.ErrInvalidInput, cfg.Metadata.Backend)
	}

	n, err := metadata.Import(ctx, metadata.NewDirStore(from), dst)
	if err != nil {
		return fmt.Errorf("import stopped after %d documents: %w", n, err)
	}
	slog.Info("metadata imported", "from", from, "backend", cfg.Metadata.Backend, "documents", n)
	return nil
}
