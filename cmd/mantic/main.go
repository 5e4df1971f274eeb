// Command mantic is the structural code-search CLI: a primary search
// command plus session and server subcommand groups, following the
// teacher's urfave/cli/v2 command-tree convention.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/mantic/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "mantic",
		Usage:                  "structural code search for AI coding agents",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "scan root", Value: "."},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress diagnostic output"},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON (default)"},
			&cli.BoolFlag{Name: "files", Usage: "output a bare list of file paths"},
			&cli.BoolFlag{Name: "markdown", Usage: "output a human-readable markdown report"},
			&cli.BoolFlag{Name: "mcp", Usage: "output a compact single-line JSON payload"},
			&cli.BoolFlag{Name: "code", Usage: "restrict to code files"},
			&cli.BoolFlag{Name: "config", Usage: "restrict to config files"},
			&cli.BoolFlag{Name: "test", Usage: "restrict to test files"},
			&cli.BoolFlag{Name: "include-generated", Usage: "include generated files"},
			&cli.BoolFlag{Name: "impact", Usage: "compute blast-radius impact for each result"},
			&cli.StringFlag{Name: "session", Usage: "session id or name to record this query against"},
			&cli.BoolFlag{Name: "watch", Usage: "after printing results, watch the scan root and keep the semantic index refreshed"},
		},
		Commands: []*cli.Command{
			sessionCommand(),
			serverCommand(),
		},
		Action: searchAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mantic:", err)
		os.Exit(1)
	}
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func envIgnorePatterns(name string) []string {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
