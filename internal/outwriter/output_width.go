package outwriter

import (
	"os"

	"github.com/huangsam/hubstats/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableLabelWidth calculates the maximum width for repository labels in table
// output based on terminal width and the fixed numeric columns.
func GetMaxTableLabelWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Total + Today + Last Updated + User with borders/padding
	baseWidth := 70

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
