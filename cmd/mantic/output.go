package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/mantic/internal/contextbuilder"
)

func render(c *cli.Context, result contextbuilder.Result) (string, error) {
	switch {
	case c.Bool("files"):
		return renderFiles(result), nil
	case c.Bool("markdown"):
		return renderMarkdown(result), nil
	case c.Bool("mcp"):
		return renderCompactJSON(result)
	default:
		return renderJSON(result)
	}
}

func renderJSON(result contextbuilder.Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

func renderCompactJSON(result contextbuilder.Result) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

func renderFiles(result contextbuilder.Result) string {
	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	return strings.Join(paths, "\n")
}

func renderMarkdown(result contextbuilder.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search: %s\n\n", result.Query)
	fmt.Fprintf(&b, "Intent: **%s** (confidence %.2f)\n\n", result.Intent.Category, result.Intent.Confidence)

	if len(result.Files) == 0 {
		b.WriteString("No matching files found.\n")
		return b.String()
	}

	for _, f := range result.Files {
		fmt.Fprintf(&b, "## %s (score %.1f)\n", f.Path, f.Score)
		if len(f.Reasons) > 0 {
			fmt.Fprintf(&b, "- reasons: %s\n", strings.Join(f.Reasons, ", "))
		}
		for _, line := range f.MatchedLines {
			fmt.Fprintf(&b, "  - L%d: `%s`\n", line.Line, line.Content)
		}
		b.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		b.WriteString("## Warnings\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
