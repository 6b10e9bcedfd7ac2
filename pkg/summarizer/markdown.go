package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l10n.T("Conversion Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", l10n.T("Generated"), s.GeneratedAt.Format(time.RFC3339))

	succeeded, failed, cancelled := s.Counts()
	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Results"))
	fmt.Fprintf(&b, "| %s | %s |\n|------|-------|\n", l10n.T("Item"), l10n.T("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Input directory"), orDash(s.InputDir))
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Output directory"), orDash(s.OutputDir))
	fmt.Fprintf(&b, "| %s | %d |\n", l10n.T("Files"), len(s.Files))
	fmt.Fprintf(&b, "| %s | %d |\n", l10n.T("Succeeded"), succeeded)
	fmt.Fprintf(&b, "| %s | %d |\n", l10n.T("Failed"), failed)
	if cancelled > 0 {
		fmt.Fprintf(&b, "| %s | %d |\n", l10n.T("Cancelled"), cancelled)
	}
	fmt.Fprintf(&b, "| %s | %s |\n\n", l10n.T("Elapsed"), formatElapsed(s.Elapsed))

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---------|-------|\n", l10n.T("Setting"), l10n.T("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Mode"), orDash(s.Settings.Mode))
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Layout"), orDash(s.Settings.Layout))
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Orientation"), orDash(s.Settings.Orientation))
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Depth"), yesNo(s.Settings.Depth))
	fmt.Fprintf(&b, "| %s | %d |\n", l10n.T("Workers"), s.Settings.Workers)
	fmt.Fprintf(&b, "| %s | %d |\n", l10n.T("Quality"), s.Settings.Quality)
	if s.Settings.Bitrate > 0 {
		fmt.Fprintf(&b, "| %s | %d kbps |\n", l10n.T("Bitrate"), s.Settings.Bitrate)
	}
	b.WriteString("\n")

	if len(s.Files) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Files"))
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
		l10n.T("Input"), l10n.T("Status"), l10n.T("Frames"), l10n.T("Outputs"), l10n.T("Elapsed"))
	b.WriteString("|-------|--------|--------|---------|---------|\n")
	for _, file := range s.Files {
		status := file.Status
		if file.Kind != "" {
			status = fmt.Sprintf("%s (%s)", file.Status, file.Kind)
		}
		outputs := make([]string, len(file.Outputs))
		for i, o := range file.Outputs {
			outputs[i] = filepath.Base(o)
		}
		outList := orDash(strings.Join(outputs, ", "))
		if file.DepthAbsent {
			outList += " (" + l10n.T("no depth") + ")"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
			filepath.Base(file.Input), status, file.Frames, outList, formatElapsed(file.Elapsed))
	}
	b.WriteString("\n")

	if failed == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Errors"))
	for _, file := range s.Files {
		if file.Error == "" || file.Kind == "cancelled" {
			continue
		}
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", filepath.Base(file.Input), file.Kind, file.Error)
	}
	b.WriteString("\n")

	return b.String()
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return l10n.T("yes")
	}
	return l10n.T("no")
}

var _ Formatter = (*MarkdownFormatter)(nil)
