// Package reporting formats the ranked sample summary printed after a render.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/lossgrid/internal/colorscale"
	"github.com/spboyer/lossgrid/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	colRank  = 6
	colLabel = 7
	colLoss  = 12
	colScore = 7
	colColor = 9

	maxIDWidth = 24
)

var printer = message.NewPrinter(language.English)

// InterpretScore returns a plain-language band for a normalised loss score (0-1).
func InterpretScore(score float64) string {
	switch {
	case score >= 2.0/3:
		return "High"
	case score >= 1.0/3:
		return "Medium"
	default:
		return "Low"
	}
}

// Summary describes one finished render.
type Summary struct {
	// Samples are ranked ascending by loss with scores assigned.
	Samples   []models.Sample
	Requested int
	Output    string
	Scale     *colorscale.Scale
}

// WriteSummary prints a header line, a ranked table and loss statistics to w.
func WriteSummary(w io.Writer, s Summary) {
	scale := s.Scale
	if scale == nil {
		scale = colorscale.Default()
	}

	header := printer.Sprintf("Ranked %d of %d requested samples", len(s.Samples), s.Requested)
	if s.Output != "" {
		header += " → " + s.Output
	}
	fmt.Fprintf(w, "%s\n\n", header) //nolint:errcheck

	if len(s.Samples) == 0 {
		return
	}

	idWidth := len("ID")
	for _, smp := range s.Samples {
		idWidth = max(idWidth, runewidth.StringWidth(smp.ID))
	}
	idWidth = min(idWidth, maxIDWidth) + 2

	totalWidth := colRank + idWidth + colLabel + colLoss + colScore + colColor + len("Band")
	fmt.Fprintf(w, "%s%s%s%s%s%s%s\n", //nolint:errcheck
		padRight("Rank", colRank),
		padRight("ID", idWidth),
		padRight("Label", colLabel),
		padRight("Loss", colLoss),
		padRight("Score", colScore),
		padRight("Color", colColor),
		"Band")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth)) //nolint:errcheck

	for i, smp := range s.Samples {
		id := runewidth.Truncate(smp.ID, idWidth-2, "…")
		fmt.Fprintf(w, "%s%s%s%s%s%s%s\n", //nolint:errcheck
			padRight(printer.Sprintf("%d", i+1), colRank),
			padRight(id, idWidth),
			padRight(fmt.Sprintf("%d", smp.Label), colLabel),
			padRight(fmt.Sprintf("%.4f", smp.Loss), colLoss),
			padRight(fmt.Sprintf("%.2f", smp.Score), colScore),
			padRight(scale.At(smp.Score).Hex(), colColor),
			InterpretScore(smp.Score))
	}

	losses := (&models.SampleSet{Samples: s.Samples}).Losses()
	mean, std := stat.MeanStdDev(losses, nil)
	if len(losses) < 2 {
		std = 0
	}
	fmt.Fprintf(w, "\nLoss: min %.4f, max %.4f, mean %.4f, std %.4f\n", //nolint:errcheck
		floats.Min(losses), floats.Max(losses), mean, std)
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-w)
}
