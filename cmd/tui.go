package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotpin/internal/ui"
)

// terminalPick runs [ui.Pick] on stderr so stdout stays clean for command output.
func terminalPick(ctx context.Context, title string, items []ui.Item) (ui.Item, error) {
	return ui.Pick(ctx, title, items, tea.WithOutput(os.Stderr))
}
