// Command querier evaluates boolean AND/OR queries against a TSE inverted
// index and prints the matching documents' URLs.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

const appName = "querier"

func main() {
	if err := makeApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		_ = os.Stderr.Sync()
		os.Exit(apperrors.ExitCode(err))
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "boolean keyword search over a precomputed inverted index"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			EnvVar: "QE_CONFIG",
			Usage:  "path to a YAML config file",
		},
		cli.StringFlag{
			Name:  "index",
			Usage: "path to the index file (overrides index.path)",
		},
		cli.StringFlag{
			Name:  "index-format",
			Usage: "index file format: text or segment",
		},
		cli.StringFlag{
			Name:  "normalizer",
			Usage: "query word normalizer: lowercase or stemming",
		},
		cli.StringFlag{
			Name:  "metadata-backend",
			Usage: "URL store: dir, redis, postgres or sqlite",
		},
		cli.StringFlag{
			Name:  "metadata-dir",
			Usage: "crawler output directory for the dir backend",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		cli.StringFlag{
			Name:  "log-format",
			Usage: "text or json",
		},
	}
	app.Commands = []cli.Command{
		queryCommand(),
		serveCommand(),
		convertCommand(),
		importCommand(),
	}
	return app
}
