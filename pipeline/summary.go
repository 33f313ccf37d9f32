package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nitin-atom/finetuning-customer-support/orchestrate"
)

// Stage summary rendering for the CLI. Each stage prints a heading and a
// small table of counts once it finishes.

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen, color.Bold)
)

func newSummaryTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// PrintRunSummary renders the outcome of a generation stage run.
func PrintRunSummary(w io.Writer, s *orchestrate.Summary) {
	headingColor.Fprintf(w, "\n%s stage complete\n", s.Stage)

	t := newSummaryTable(w)
	t.AppendRows([]table.Row{
		{"Work items", humanize.Comma(int64(s.Total))},
		{"Completed", humanize.Comma(int64(s.Completed))},
		{"Still pending", humanize.Comma(int64(s.Pending))},
		{"Permanently failed", humanize.Comma(int64(len(s.Failed)))},
		{"Elapsed", s.Elapsed.Round(time.Second)},
	})
	t.Render()

	if len(s.Failed) > 0 {
		failColor.Fprintf(w, "Items that exceeded the attempt ceiling:\n")
		for _, id := range s.Failed {
			fmt.Fprintf(w, "  - %s\n", id)
		}
	}
}

// PrintIngestSummary renders the outcome of an ingest run.
func PrintIngestSummary(w io.Writer, s *IngestSummary) {
	headingColor.Fprintf(w, "\ningest stage complete\n")

	t := newSummaryTable(w)
	t.AppendRows([]table.Row{
		{"Entries read", humanize.Comma(int64(s.Read))},
		{"Articles stored", humanize.Comma(int64(s.Stored))},
		{"Skipped", humanize.Comma(int64(s.Skipped))},
	})
	t.Render()
}

// PrintFormatSummary renders the outcome of a format run.
func PrintFormatSummary(w io.Writer, s *FormatSummary) {
	headingColor.Fprintf(w, "\nformat stage complete\n")

	m := s.Metadata
	t := newSummaryTable(w)
	t.AppendRows([]table.Row{
		{"Training examples", humanize.Comma(int64(s.TotalExamples))},
		{"Source articles", humanize.Comma(int64(m.SourceArticles))},
		{"Avg questions/article", fmt.Sprintf("%.1f", m.AvgQuestionsPerArticle)},
		{"Avg answer length", fmt.Sprintf("%.0f chars", m.AvgAnswerLengthChars)},
		{"Unanswered skipped", humanize.Comma(int64(s.Unanswered))},
	})
	t.Render()

	if len(m.CollectionsCovered) > 0 {
		fmt.Fprintf(w, "\nExamples by collection:\n")
		ct := newSummaryTable(w)
		ct.AppendHeader(table.Row{"Collection", "Examples"})
		limit := len(m.CollectionsCovered)
		if limit > 5 {
			limit = 5
		}
		for _, c := range m.CollectionsCovered[:limit] {
			ct.AppendRow(table.Row{c.Name, humanize.Comma(int64(c.Examples))})
		}
		ct.Render()
	}
}

// PrintQualityReport renders the outcome of a check run.
func PrintQualityReport(w io.Writer, r *QualityReport) {
	headingColor.Fprintf(w, "\ncheck stage complete\n")

	t := newSummaryTable(w)
	t.AppendRows([]table.Row{
		{"Original examples", humanize.Comma(int64(r.TotalExamplesGenerated))},
		{"After validation", humanize.Comma(int64(r.ExamplesAfterValidation))},
		{"Exact duplicates removed", humanize.Comma(int64(r.RemovalReasons.DuplicateExact))},
		{"Near duplicates removed", humanize.Comma(int64(r.RemovalReasons.DuplicateNear))},
		{"Length failures removed", humanize.Comma(int64(r.RemovalReasons.ContentLengthInvalid))},
		{"Format failures removed", humanize.Comma(int64(r.RemovalReasons.QuestionFormatInvalid))},
		{"Grounding sample", humanize.Comma(int64(r.SemanticChecksSample.SampleSize))},
		{"Grounding pass rate", fmt.Sprintf("%.1f%%", r.SemanticChecksSample.GroundingPassRate*100)},
	})
	t.Render()

	fmt.Fprintf(w, "\nRecommendations:\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}

	if r.Passed() {
		okColor.Fprintln(w, "\nDataset validated.")
	} else {
		failColor.Fprintln(w, "\nDataset did not pass validation.")
	}
}
