package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/mantic/internal/mcp"
)

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:   "server",
		Usage:  "start the agent-protocol stdio server",
		Action: serverAction,
	}
}

func serverAction(c *cli.Context) error {
	root := c.String("path")
	srv := mcp.NewServer(root)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
