package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/nodecloud/internal/dataset"
	"github.com/recera/nodecloud/pkg/nodecloud"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(nodecloud.AccentColor))

	labelStyle = lipgloss.NewStyle().
			Width(28).
			MaxHeight(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))
)

func newInspectCommand(a *app) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the dataset and the graph built from it",
		Long: `Prints the node and link counts and every tag with the projects that use it.
With --export, writes the dataset back out in the format of the target file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			return runInspect(cmd.OutOrStdout(), a, export)
		},
	}

	cmd.Flags().StringVarP(&export, "export", "e", "", "Write the dataset to this file (.yaml, .toml or .json)")

	return cmd
}

func runInspect(w io.Writer, a *app, export string) error {
	entities, err := a.entities()
	if err != nil {
		return err
	}
	g := nodecloud.Build(entities, a.options())
	st := g.Stats()

	fmt.Fprintln(w, headerStyle.Render("Graph"))
	fmt.Fprintf(w, "%s%d\n", labelStyle.Render("projects"), st.Primaries)
	fmt.Fprintf(w, "%s%d\n", labelStyle.Render("tags"), st.Secondaries)
	fmt.Fprintf(w, "%s%d\n", labelStyle.Render("links"), st.Links)
	if skipped := len(entities) - st.Primaries; skipped > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d entities skipped (missing or duplicate id)", skipped)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Tags"))
	for _, n := range g.Nodes {
		if n.Kind != nodecloud.KindSecondary {
			continue
		}
		titles := make([]string, 0, len(n.Related))
		for _, e := range g.PrimariesWithTag(n.ID) {
			titles = append(titles, e.Title)
		}
		fmt.Fprintf(w, "%s%s\n", labelStyle.Render(n.Label), mutedStyle.Render(strings.Join(titles, ", ")))
	}

	if export == "" {
		return nil
	}
	if err := dataset.Write(export, entities); err != nil {
		return err
	}
	a.log.Info("dataset exported", zap.String("path", export), zap.Int("entities", len(entities)))
	return nil
}
