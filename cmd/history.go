package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valtlai/agent-history/internal"
	"github.com/valtlai/agent-history/internal/export"
)

var (
	historyFormat string
	historyOutput string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var historyCmd = &cobra.Command{
	Use:   "history <project-path>",
	Short: "Aggregate conversation history for a project",
	Long: `Aggregate conversation history for a project from every available
source and print a styled summary, or export it with --format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid project path: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		aggregator := internal.NewAggregator(cfg)
		result := aggregator.GetHistory(context.Background(), projectPath)

		if historyFormat != "" {
			return exportHistory(result)
		}

		printHistorySummary(projectPath, result)
		return nil
	},
}

func exportHistory(result *internal.HistoryResult) error {
	exporter, err := export.NewExporter(historyFormat)
	if err != nil {
		return err
	}

	w := os.Stdout
	if historyOutput != "" {
		f, err := os.Create(historyOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return exporter.Export(result, w)
}

func printHistorySummary(projectPath string, result *internal.HistoryResult) {
	fmt.Println(headerStyle.Render("Conversation history for " + projectPath))
	fmt.Println()

	if result.TotalMessages == 0 {
		fmt.Println(dateStyle.Render("No conversation history found in any source."))
		return
	}

	sources := make([]string, len(result.Sources))
	for i, source := range result.Sources {
		sources[i] = string(source)
	}
	fmt.Printf("%s %s\n", countStyle.Render(fmt.Sprintf("%d messages", result.TotalMessages)),
		sourceStyle.Render("from "+strings.Join(sources, ", ")))
	if result.DateRange != nil {
		fmt.Println(dateStyle.Render(fmt.Sprintf("%s — %s",
			result.DateRange.Start.Format(time.RFC3339),
			result.DateRange.End.Format(time.RFC3339))))
	}
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONVERSATION\tSOURCE\tMESSAGES\tLAST ACTIVITY")
	for _, conv := range result.Conversations {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			titleStyle.Render(conv.Title),
			conv.Source,
			conv.MessageCount,
			conv.EndTime.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "Export format: json, jsonl, yaml, md")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Write export to a file instead of stdout")
	rootCmd.AddCommand(historyCmd)
}
