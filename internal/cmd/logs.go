package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/triagehq/blackbox/internal/config"
	"github.com/triagehq/blackbox/internal/tui"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the rolling diagnostics log",
	Long: `Print the rolling diagnostics log.

Examples:
  # Show the last 50 lines
  blackbox logs

  # Show everything
  blackbox logs -n 0

  # Follow new entries as they are written
  blackbox logs -f

  # Only lines matching a pattern
  blackbox logs --grep 'ERROR|EVENT'

  # Open the interactive viewer
  blackbox logs -i`,
	RunE: runLogs,
}

var (
	logsTail        int
	logsFollow      bool
	logsGrep        string
	logsNoColor     bool
	logsInteractive bool
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter lines matching pattern (regex)")
	logsCmd.Flags().BoolVar(&logsNoColor, "no-color", false, "Disable colored output")
	logsCmd.Flags().BoolVarP(&logsInteractive, "interactive", "i", false, "Open the interactive viewer")
}

// Tag styles for terminal output. Keyed by the category tag embedded in
// each line.
var tagStyles = map[string]lipgloss.Style{
	"| ERROR:":  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	"| EVENT:":  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	"| SCREEN:": lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	"| SYSTEM:": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var grep *regexp.Regexp
	if logsGrep != "" {
		grep, err = regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid --grep pattern: %w", err)
		}
	}

	content, err := os.ReadFile(cfg.Log.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	lines := filterLines(string(content), grep, logsTail)

	if logsInteractive {
		program := tea.NewProgram(
			tui.New(cfg.Log.Path, strings.Join(lines, "\n")),
			tea.WithAltScreen(),
		)
		_, err := program.Run()
		return err
	}

	out := cmd.OutOrStdout()
	for _, line := range lines {
		fmt.Fprintln(out, colorize(line))
	}

	if logsFollow {
		return followLog(out, cfg.Log.Path, int64(len(content)), grep)
	}
	return nil
}

// filterLines applies the grep pattern and tail limit to raw log content.
func filterLines(content string, grep *regexp.Regexp, tail int) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if line == "" {
			continue
		}
		if grep != nil && !grep.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	return lines
}

// colorize applies the tag style matching the line's category, if any.
func colorize(line string) string {
	if logsNoColor {
		return line
	}
	for tag, style := range tagStyles {
		if strings.Contains(line, tag) {
			return style.Render(line)
		}
	}
	return line
}

// followLog watches the log file and prints content appended after offset.
// Trims rewrite the file smaller; when that happens the offset resets so
// following survives rotation.
func followLog(out io.Writer, path string, offset int64, grep *regexp.Regexp) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: the file itself disappears and reappears across
	// trims and recreates.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.Size() < offset {
				offset = 0
			}
			if info.Size() == offset {
				continue
			}
			f, err := os.Open(path)
			if err != nil {
				continue
			}
			if _, err := f.Seek(offset, io.SeekStart); err != nil {
				f.Close()
				continue
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				continue
			}
			offset += int64(len(data))
			for _, line := range filterLines(string(data), grep, 0) {
				fmt.Fprintln(out, colorize(line))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: log watcher error: %v\n", err)
		}
	}
}
