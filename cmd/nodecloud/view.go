package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/nodecloud/internal/dataset"
	"github.com/recera/nodecloud/internal/tui"
	"github.com/recera/nodecloud/pkg/nodecloud"
)

func newViewCommand(a *app) *cobra.Command {
	var fps int

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the cloud in the terminal",
		Long:  `Draws the rotating cloud as text. Drag with the mouse to orbit, hover to highlight, click for details.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(true); err != nil {
				return err
			}
			if fps <= 0 {
				fps = a.cfg.Server.FPS
			}
			return runView(cmd.Context(), a, fps)
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 0, "Frames per second (defaults to server.fps)")

	return cmd
}

func runView(ctx context.Context, a *app, fps int) error {
	entities, err := a.entities()
	if err != nil {
		return err
	}

	engine := nodecloud.New(entities, a.options())
	model := tui.New(engine, tui.Config{Title: a.cfg.Server.Title, FPS: fps})
	p := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if a.watching() {
		w, err := dataset.NewWatcher(a.cfg.Dataset, func(entities []nodecloud.Entity) {
			p.Send(tui.DatasetMsg{Entities: entities})
		}, a.log.Named("dataset"))
		if err != nil {
			return err
		}
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go w.Run(watchCtx)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal viewer: %w", err)
	}
	return nil
}
