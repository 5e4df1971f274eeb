package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/mantic/internal/session"
	"github.com/standardbeagle/mantic/internal/types"
)

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "manage search sessions",
		Subcommands: []*cli.Command{
			{
				Name:      "start",
				Usage:     "start a new session",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "intent", Aliases: []string{"i"}, Usage: "declared intent category"},
				},
				Action: sessionStartAction,
			},
			{
				Name:   "list",
				Usage:  "list known sessions",
				Action: sessionListAction,
			},
			{
				Name:      "info",
				Usage:     "show a session's full record",
				ArgsUsage: "<id>",
				Action:    sessionInfoAction,
			},
			{
				Name:      "end",
				Usage:     "mark a session ended",
				ArgsUsage: "[id]",
				Action:    sessionEndAction,
			},
		},
	}
}

func sessionRoot(c *cli.Context) string {
	if p := c.String("path"); p != "" {
		return p
	}
	return "."
}

func sessionStartAction(c *cli.Context) error {
	name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	mgr := session.NewManager(sessionRoot(c))
	s, err := mgr.Start(name, types.IntentCategory(c.String("intent")))
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return printJSON(s.Meta)
}

func sessionListAction(c *cli.Context) error {
	mgr := session.NewManager(sessionRoot(c))
	metas, err := mgr.List()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	return printJSON(metas)
}

func sessionInfoAction(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("session info requires <id>")
	}
	mgr := session.NewManager(sessionRoot(c))
	s, err := mgr.Load(id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return fmt.Errorf("no session matches %q", id)
	}
	return printJSON(s)
}

func sessionEndAction(c *cli.Context) error {
	id := c.Args().First()
	mgr := session.NewManager(sessionRoot(c))
	if id != "" {
		if s, err := mgr.Load(id); err != nil || s == nil {
			return fmt.Errorf("no session matches %q", id)
		}
	}
	if err := mgr.End(); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	fmt.Fprintln(os.Stdout, "session ended")
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
