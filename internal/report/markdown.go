package report

import (
	"io"
	"path/filepath"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/log2test/internal/model"
)

// MarkdownWriter outputs runs in GitHub-flavored Markdown: a summary table
// per run, a chart of match outcomes and the collected paths per host.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	return w.WriteAll([]*model.Run{run})
}

// WriteAll outputs all runs in one Markdown document.
func (w *MarkdownWriter) WriteAll(runs []*model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("log2test Report")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
	}
	for _, run := range runs {
		w.writeRun(md, run)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeRun(md *markdown.Markdown, run *model.Run) {
	md.H2(filepath.Base(run.LogFile))
	md.PlainText("")

	rows := [][]string{
		{"Log File", "`" + run.LogFile + "`"},
		{"Format", run.LogFormat},
		{"Test Stack", run.TestStack},
		{"Window", strconv.Itoa(run.BeginLine) + " - " + strconv.Itoa(run.EndLine)},
		{"Lines In Log", strconv.Itoa(run.MaxLine)},
		{"Stopped At", strconv.Itoa(run.Position)},
		{"Next Begin Line", strconv.Itoa(run.NextBeginLine)},
		{"Status", statusText(run)},
	}
	if run.ID != 0 {
		rows = append([][]string{{"Run", "#" + strconv.FormatInt(run.ID, 10)}}, rows...)
	}
	if !run.StartedAt.IsZero() {
		rows = append(rows, []string{"Scanned At", run.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, run)
	w.writeCounters(md, run)
	w.writeHosts(md, run)
}

func statusText(run *model.Run) string {
	switch run.Status {
	case model.StatusCompleted:
		return "✅ Completed"
	case model.StatusPartial:
		return "⚠️ Partial (end of log reached)"
	case model.StatusFailed:
		return "❌ Failed - " + run.Error
	default:
		return run.Status.String()
	}
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.Run) {
	switch {
	case run.Status == model.StatusFailed:
		md.Cautionf("The scan failed at line %d and progress was not advanced: %s", run.Position, run.Error)
	case run.Status == model.StatusPartial:
		md.Warningf(
			"The log ended at line %d before every window was read. The next run starts at line %d.",
			run.MaxLine, run.NextBeginLine,
		)
	case run.Counters.Dropped > 0:
		md.Importantf(
			"%d path(s) were dropped because duplicate removal is enabled while screenshots are disabled.",
			run.Counters.Dropped,
		)
	case run.TotalPaths() == 0:
		md.Note("No request path matched the configured hosts.")
	default:
		md.Tip("All windows were scanned.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCounters(md *markdown.Markdown, run *model.Run) {
	c := run.Counters
	md.PlainText("### Counters")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Lines Read", strconv.Itoa(c.LinesRead)},
			{"Blank Lines", strconv.Itoa(c.BlankLines)},
			{"Matched", strconv.Itoa(c.Matched)},
			{"Appended", strconv.Itoa(c.Appended)},
			{"Duplicates", strconv.Itoa(c.Duplicates)},
			{"Dropped", strconv.Itoa(c.Dropped)},
		},
	})
	md.PlainText("")

	if c.Matched > 0 {
		w.writePieChart(md, c)
	}
}

// writePieChart writes a mermaid pie chart of match outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, c model.Counters) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Match Outcomes"),
		piechart.WithShowData(true),
	)

	if c.Appended > 0 {
		chart.LabelAndIntValue("Appended", uint64(c.Appended))
	}
	if c.Duplicates > 0 {
		chart.LabelAndIntValue("Duplicates", uint64(c.Duplicates))
	}
	if c.Dropped > 0 {
		chart.LabelAndIntValue("Dropped", uint64(c.Dropped))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeHosts(md *markdown.Markdown, run *model.Run) {
	md.PlainText("### Hosts")
	md.PlainText("")

	rows := make([][]string, 0, len(run.Hosts))
	for _, h := range run.Hosts {
		fixture := "`" + h.FixtureName + "`"
		if h.Empty() {
			fixture = "- (no paths)"
		}
		rows = append(rows, []string{h.Host, strconv.Itoa(len(h.Paths)), fixture})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Host", "Paths", "Fixture"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, h := range run.Fixtures() {
		items := make([]string, len(h.Paths))
		for i, p := range h.Paths {
			items[i] = "`" + truncateString(p, 120) + "`"
		}
		md.PlainText("#### " + h.Host)
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [log2test](https://github.com/nao1215/log2test)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
