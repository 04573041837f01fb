package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

func convertCommand() cli.Command {
	return cli.Command{
		Name:  "convert",
		Usage: "convert an index between the text format and .spdx segments",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "in", Usage: "input index file"},
			cli.StringFlag{Name: "from", Value: "text", Usage: "input format: text or segment"},
			cli.StringFlag{Name: "out", Usage: "output file"},
			cli.StringFlag{Name: "out-dir", Usage: "write a timestamped segment into this directory instead of --out"},
		},
		Action: runConvert,
	}
}

func runConvert(c *cli.Context) error {
	if _, err := loadConfig(c); err != nil {
		return err
	}
	in, from := c.String("in"), c.String("from")
	out, outDir := c.String("out"), c.String("out-dir")
	if in == "" || (out == "") == (outDir == "") {
		return fmt.Errorf("%w: convert needs --in and exactly one of --out or --out-dir", apperrors.ErrInvalidInput)
	}

	idx, err := loadIndexFile(in, from)
	if err != nil {
		return err
	}

	switch {
	case outDir != "":
		if from == "segment" {
			return fmt.Errorf("%w: --out-dir only writes segments", apperrors.ErrInvalidInput)
		}
		name, err := segment.NewWriter(outDir).Write(idx)
		if err != nil {
			return err
		}
		slog.Info("segment written", "path", name, "words", idx.Len())
	case from == "segment":
		if err := writeText(out, idx); err != nil {
			return err
		}
		slog.Info("text index written", "path", out, "words", idx.Len())
	default:
		if err := segment.WriteFile(out, idx.Entries(), time.Now()); err != nil {
			return err
		}
		slog.Info("segment written", "path", out, "words", idx.Len())
	}
	return nil
}

func writeText(path string, idx *index.Index) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := index.Save(f, idx); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
