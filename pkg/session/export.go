package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/probelabs/webscope/pkg/types"
)

// ExportFormat selects the rendering used by Export.
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"     // structured data, full reconstruction
	FormatText     ExportFormat = "text"     // formatted plain-text report
	FormatMarkdown ExportFormat = "markdown" // lightweight markup
)

// Export renders the session in the requested format with freshly recomputed
// statistics. The JSON form round-trips through Import.
func (m *Manager) Export(id string, format ExportFormat) ([]byte, error) {
	m.mu.RLock()
	stored, ok := m.sessions[id]
	if !ok {
		m.mu.RUnlock()
		return nil, types.NewSessionNotFoundError(id)
	}
	session := cloneSession(stored)
	m.mu.RUnlock()

	session.Statistics = computeStatistics(session)

	switch format {
	case FormatJSON:
		return json.MarshalIndent(session, "", "  ")
	case FormatText:
		return []byte(renderText(session)), nil
	case FormatMarkdown:
		return []byte(renderMarkdown(session)), nil
	default:
		return nil, types.NewValidationError("format", fmt.Sprintf("unknown export format %q", format))
	}
}

func renderText(s *types.DebugSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Debug Session Report: %s\n", s.Name)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 22+len(s.Name)))
	fmt.Fprintf(&b, "ID:         %s\n", s.ID)
	fmt.Fprintf(&b, "Target URL: %s\n", s.TargetURL)
	fmt.Fprintf(&b, "Status:     %s\n", s.Status)
	fmt.Fprintf(&b, "Created:    %s\n", s.CreatedAt.Format(time.RFC3339))
	if s.EndedAt != nil {
		fmt.Fprintf(&b, "Ended:      %s\n", s.EndedAt.Format(time.RFC3339))
	}
	if len(s.Tags) > 0 {
		b.WriteString("Tags:\n")
		for k, v := range s.Tags {
			fmt.Fprintf(&b, "  %s=%s\n", k, v)
		}
	}

	b.WriteString("\nStatistics\n----------\n")
	writeStatisticsTable(&b, s.Statistics, "%-26s %v\n")

	b.WriteString("\nAnalysis Results\n----------------\n")
	if len(s.AnalysisResults) == 0 {
		b.WriteString("(none)\n")
	}
	for i, r := range s.AnalysisResults {
		fmt.Fprintf(&b, "[%d] %s  model=%s  status=%s  issues=%d  recommendations=%d\n",
			i+1, r.AnalyzedAt.Format(time.RFC3339), r.Model, r.Status, len(r.Issues), len(r.Recommendations))
		if r.Summary != "" {
			fmt.Fprintf(&b, "    %s\n", r.Summary)
		}
	}
	return b.String()
}

func renderMarkdown(s *types.DebugSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Debug Session: %s\n\n", s.Name)
	fmt.Fprintf(&b, "- **ID**: %s\n", s.ID)
	fmt.Fprintf(&b, "- **Target URL**: %s\n", s.TargetURL)
	fmt.Fprintf(&b, "- **Status**: %s\n", s.Status)
	fmt.Fprintf(&b, "- **Created**: %s\n", s.CreatedAt.Format(time.RFC3339))
	if s.EndedAt != nil {
		fmt.Fprintf(&b, "- **Ended**: %s\n", s.EndedAt.Format(time.RFC3339))
	}
	b.WriteString("\n## Statistics\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	writeStatisticsTable(&b, s.Statistics, "| %s | %v |\n")

	b.WriteString("\n## Analysis Results\n\n")
	if len(s.AnalysisResults) == 0 {
		b.WriteString("_none_\n")
	}
	for _, r := range s.AnalysisResults {
		fmt.Fprintf(&b, "### %s (%s)\n\n", r.AnalyzedAt.Format(time.RFC3339), r.Model)
		fmt.Fprintf(&b, "- Status: %s\n", r.Status)
		fmt.Fprintf(&b, "- Issues: %d\n", len(r.Issues))
		fmt.Fprintf(&b, "- Recommendations: %d\n", len(r.Recommendations))
		if r.Summary != "" {
			fmt.Fprintf(&b, "\n%s\n", r.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// writeStatisticsTable writes every statistics row through the given format,
// which must accept a label and a value.
func writeStatisticsTable(b *strings.Builder, stats types.SessionStatistics, format string) {
	rows := []struct {
		label string
		value interface{}
	}{
		{"Console messages", stats.TotalConsoleMessages},
		{"Console errors", stats.ConsoleErrors},
		{"Console warnings", stats.ConsoleWarnings},
		{"Network requests", stats.TotalNetworkRequests},
		{"Failed requests", stats.FailedNetworkRequests},
		{"Failure rate", fmt.Sprintf("%.1f%%", stats.FailureRate*100)},
		{"Mean response time", stats.MeanResponseTime},
		{"Performance samples", stats.PerformanceSamples},
		{"Peak CPU", fmt.Sprintf("%.1f%%", stats.PeakCPUPercent)},
		{"Peak memory (bytes)", stats.PeakMemoryBytes},
		{"Snapshots", stats.SnapshotCount},
		{"Analyses", stats.AnalysisCount},
		{"Tokens used", stats.TotalTokensUsed},
	}
	for _, row := range rows {
		fmt.Fprintf(b, format, row.label, row.value)
	}
}
