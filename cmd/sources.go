package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valtlai/agent-history/internal"
)

var (
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

var sourcesCmd = &cobra.Command{
	Use:   "sources <project-path>",
	Short: "Show which history sources exist for a project",
	Long: `Check every well-known source location for a project and report
which ones are present. A missing source is normal, not an error.`,
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

		fmt.Println(headerStyle.Render("Source locations for " + projectPath))
		fmt.Println()

		reportResolved("transcripts", cfg.TranscriptsDir, projectPath)
		reportPath("tracking store", cfg.TrackingDBPath)
		reportResolved("chats", cfg.ChatsDir, projectPath)
		reportPath("exports (project tree)", projectPath)
		reportResolved("artifacts", cfg.ArtifactsDir, projectPath)

		return nil
	},
}

func reportResolved(label, baseDir, projectPath string) {
	dirs := internal.ResolveProjectDirs(baseDir, projectPath)
	if len(dirs) == 0 {
		fmt.Printf("  %s %s\n", missingStyle.Render("absent "), label)
		return
	}
	fmt.Printf("  %s %s\n", okStyle.Render("present"), label)
	for _, dir := range dirs {
		fmt.Printf("          %s\n", missingStyle.Render(dir))
	}
}

func reportPath(label, path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("  %s %s\n", missingStyle.Render("absent "), label)
		return
	}
	fmt.Printf("  %s %s\n", okStyle.Render("present"), label)
	fmt.Printf("          %s\n", missingStyle.Render(path))
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
