package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/logger"
)

// loadConfig reads the config file, applies global flag overrides, validates
// the result and installs the logger. Logs always go to stderr; stdout
// carries query results.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	overrides := []struct {
		flag  string
		field *string
	}{
		{"index", &cfg.Index.Path},
		{"index-format", &cfg.Index.Format},
		{"normalizer", &cfg.Index.Normalizer},
		{"metadata-backend", &cfg.Metadata.Backend},
		{"metadata-dir", &cfg.Metadata.Dir},
		{"log-level", &cfg.Logging.Level},
		{"log-format", &cfg.Logging.Format},
	}
	for _, o := range overrides {
		if c.GlobalIsSet(o.flag) {
			*o.field = c.GlobalString(o.flag)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	return cfg, nil
}

func loadIndex(cfg config.IndexConfig) (*index.Index, error) {
	return loadIndexFile(cfg.Path, cfg.Format)
}

func loadIndexFile(path, format string) (*index.Index, error) {
	var (
		idx *index.Index
		err error
	)
	switch format {
	case "segment":
		idx, err = segment.Load(path)
	case "text", "":
		idx, err = index.LoadFile(path)
	default:
		return nil, fmt.Errorf("unknown index format %q", format)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("index loaded", "path", path, "format", format, "words", idx.Len(), "documents", idx.DocCount())
	return idx, nil
}

func loadNormalizer(cfg config.IndexConfig) (tokenizer.Normalizer, error) {
	return tokenizer.NormalizerByName(cfg.Normalizer)
}
