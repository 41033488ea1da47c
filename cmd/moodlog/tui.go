package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pbaille/moodlog/internal/tui"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal journal (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}
}

func runTUI(ctx context.Context) error {
	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.tokens.Identity(); err != nil {
		return fmt.Errorf("%w, run 'moodlog login' first", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := tui.NewApp(ctx, rt.session(), rt.client, rt.log)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
