package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zachkp/zach-term/internal/store"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print visitor and command analytics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := os.Stat(a.cfg.DBPath); err != nil {
				return fmt.Errorf("analytics database %s: %w", a.cfg.DBPath, err)
			}
			st, err := store.Open(ctx, store.Config{
				Path:   a.cfg.DBPath,
				Logger: a.log.Named("store"),
			})
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9e2af"))

func printStats(w io.Writer, s *store.Stats) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headingStyle.Render("Visitors"))
	fmt.Fprintf(&b, "  %s total · %s unique\n", humanize.Comma(s.TotalVisitors), humanize.Comma(s.UniqueVisitors))
	fmt.Fprintf(&b, "  %s today · %s this week\n\n", humanize.Comma(s.VisitorsToday), humanize.Comma(s.VisitorsThisWeek))
	fmt.Fprintf(&b, "%s\n", headingStyle.Render("Terminal"))
	fmt.Fprintf(&b, "  %s commands across %s sessions\n\n", humanize.Comma(s.TotalCommands), humanize.Comma(s.Sessions))

	for _, section := range []struct {
		title  string
		counts []store.Count
	}{
		{"Top commands", s.TopCommands},
		{"Unknown commands", s.TopUnknown},
		{"Achievements", s.Achievements},
	} {
		fmt.Fprintf(&b, "%s\n", headingStyle.Render(section.title))
		if len(section.counts) == 0 {
			b.WriteString("  nothing yet\n\n")
			continue
		}
		b.WriteString(countTable(section.counts) + "\n\n")
	}

	fmt.Fprintf(&b, "generated %s\n", humanize.Time(s.GeneratedAt))
	_, err := io.WriteString(w, b.String())
	return err
}

func countTable(counts []store.Count) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("name", "count")
	for _, c := range counts {
		t.Row(c.Name, humanize.Comma(c.Count))
	}
	return t.String()
}
