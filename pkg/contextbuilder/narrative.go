// Package contextbuilder turns telemetry snapshots into bounded context for
// model analysis. The narrative form is capped section by section so the
// prompt stays inside the configured budget; the structured form carries the
// same information as typed aggregates for callers that avoid text parsing.
package contextbuilder

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/probelabs/webscope/pkg/config"
	"github.com/probelabs/webscope/pkg/logging"
	"github.com/probelabs/webscope/pkg/redact"
	"github.com/probelabs/webscope/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("contextbuilder")
	if err != nil {
		debugLog.Warnf("Failed to initialize contextbuilder logger, using stderr fallback: %v", err)
	}
}

// AnalysisOptions selects what the model is asked to analyze and how much
// telemetry is included. Zero-value limits use the builder's configured
// defaults.
type AnalysisOptions struct {
	AnalyzeErrors      bool
	AnalyzePerformance bool
	AnalyzeNetwork     bool
	ProvideFixes       bool

	MaxConsoleErrors   int
	MaxConsoleWarnings int
	MaxNetworkFailures int
	SlowRequestAbove   time.Duration

	// URLFilter optionally restricts which network requests appear, as a glob.
	URLFilter string
}

// Builder assembles context from snapshots. Safe for concurrent use.
type Builder struct {
	cfg      config.ContextConfig
	redactor *redact.Engine
}

// NewBuilder creates a builder with the given limits. redactor may be nil to
// skip redaction (callers handling already-scrubbed data).
func NewBuilder(cfg config.ContextConfig, redactor *redact.Engine) *Builder {
	if cfg.MaxConsoleErrors <= 0 {
		cfg.MaxConsoleErrors = 10
	}
	if cfg.MaxConsoleWarnings <= 0 {
		cfg.MaxConsoleWarnings = 5
	}
	if cfg.MaxNetworkFailures <= 0 {
		cfg.MaxNetworkFailures = 10
	}
	if cfg.SlowRequestAbove <= 0 {
		cfg.SlowRequestAbove = 3 * time.Second
	}
	return &Builder{cfg: cfg, redactor: redactor}
}

// BuildNarrativeContext renders the snapshot as a natural-language prompt.
// Section contents are redacted, capped oldest-first, and followed by output
// format instructions so the model's answer stays parseable.
func (b *Builder) BuildNarrativeContext(snapshot *types.Snapshot, opts AnalysisOptions) string {
	var sb strings.Builder

	b.writeInstructionHeader(&sb, opts)

	errors, warnings := splitConsoleBySeverity(snapshot.ConsoleMessages)
	maxErrors := opts.MaxConsoleErrors
	if maxErrors <= 0 {
		maxErrors = b.cfg.MaxConsoleErrors
	}
	maxWarnings := opts.MaxConsoleWarnings
	if maxWarnings <= 0 {
		maxWarnings = b.cfg.MaxConsoleWarnings
	}

	if len(errors) > 0 {
		fmt.Fprintf(&sb, "## Console Errors (%d total, showing oldest %d)\n\n", len(errors), min(len(errors), maxErrors))
		for _, msg := range capOldest(errors, maxErrors) {
			b.writeConsoleMessage(&sb, msg)
		}
		sb.WriteString("\n")
	}

	if len(warnings) > 0 {
		fmt.Fprintf(&sb, "## Console Warnings (%d total, showing oldest %d)\n\n", len(warnings), min(len(warnings), maxWarnings))
		for _, msg := range capOldest(warnings, maxWarnings) {
			b.writeConsoleMessage(&sb, msg)
		}
		sb.WriteString("\n")
	}

	b.writeNetworkSections(&sb, snapshot, opts)
	b.writePerformanceSection(&sb, snapshot)

	sb.WriteString(outputFormatInstructions(opts.ProvideFixes))
	return sb.String()
}

func (b *Builder) writeInstructionHeader(sb *strings.Builder, opts AnalysisOptions) {
	sb.WriteString("You are analyzing telemetry captured from a browser debugging session.\n")

	var goals []string
	if opts.AnalyzeErrors {
		goals = append(goals, "diagnose the console errors and their likely root causes")
	}
	if opts.AnalyzeNetwork {
		goals = append(goals, "explain the failed and slow network requests")
	}
	if opts.AnalyzePerformance {
		goals = append(goals, "assess the page's performance metrics")
	}
	if len(goals) == 0 {
		goals = append(goals, "identify the most significant problems in the captured telemetry")
	}
	fmt.Fprintf(sb, "Your goals: %s.\n", strings.Join(goals, "; "))
	if opts.ProvideFixes {
		sb.WriteString("For each issue, suggest a concrete fix.\n")
	}
	sb.WriteString("\n")
}

func (b *Builder) writeConsoleMessage(sb *strings.Builder, msg types.ConsoleMessage) {
	text := b.redactText(msg.Text)
	fmt.Fprintf(sb, "- [%s] %s", msg.Timestamp.Format("15:04:05.000"), text)
	if msg.Source != nil && msg.Source.URL != "" {
		fmt.Fprintf(sb, " (%s:%d)", msg.Source.URL, msg.Source.Line)
	}
	sb.WriteString("\n")
	if msg.StackTrace != "" {
		fmt.Fprintf(sb, "  stack: %s\n", b.redactText(msg.StackTrace))
	}
}

func (b *Builder) writeNetworkSections(sb *strings.Builder, snapshot *types.Snapshot, opts AnalysisOptions) {
	slowAbove := opts.SlowRequestAbove
	if slowAbove <= 0 {
		slowAbove = b.cfg.SlowRequestAbove
	}
	maxFailures := opts.MaxNetworkFailures
	if maxFailures <= 0 {
		maxFailures = b.cfg.MaxNetworkFailures
	}
	matcher := compileURLGlob(opts.URLFilter)

	var failures, slow []types.NetworkRequest
	for _, req := range snapshot.NetworkRequests {
		if !matcher(req.URL) {
			continue
		}
		if req.IsError() {
			failures = append(failures, req)
		} else if req.Duration >= slowAbove {
			slow = append(slow, req)
		}
	}

	if len(failures) > 0 {
		fmt.Fprintf(sb, "## Network Failures (%d total, showing oldest %d)\n\n", len(failures), min(len(failures), maxFailures))
		for _, req := range capOldest(failures, maxFailures) {
			fmt.Fprintf(sb, "- %s %s -> %d", req.Method, b.redactText(req.URL), req.StatusCode)
			if req.ErrorText != "" {
				fmt.Fprintf(sb, " (%s)", b.redactText(req.ErrorText))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(slow) > 0 {
		fmt.Fprintf(sb, "## Slow Requests (above %s)\n\n", slowAbove)
		for _, req := range capOldest(slow, maxFailures) {
			fmt.Fprintf(sb, "- %s %s took %s\n", req.Method, b.redactText(req.URL), req.Duration)
		}
		sb.WriteString("\n")
	}
}

func (b *Builder) writePerformanceSection(sb *strings.Builder, snapshot *types.Snapshot) {
	sample := snapshot.LatestPerformanceSample()
	if sample == nil {
		return
	}

	sb.WriteString("## Latest Performance Sample\n\n")
	fmt.Fprintf(sb, "- CPU: %.1f%%\n", sample.CPUPercent)
	fmt.Fprintf(sb, "- Memory: %d bytes\n", sample.MemoryBytes)
	fmt.Fprintf(sb, "- DOM nodes: %d\n", sample.DOMNodeCount)
	if sample.LoadTime > 0 {
		fmt.Fprintf(sb, "- Load time: %s\n", sample.LoadTime)
	}
	if sample.FirstPaint > 0 {
		fmt.Fprintf(sb, "- First contentful paint: %s\n", sample.FirstPaint)
	}
	if sample.LargestPaint > 0 {
		fmt.Fprintf(sb, "- Largest contentful paint: %s\n", sample.LargestPaint)
	}

	for _, flag := range performanceFlags(sample) {
		fmt.Fprintf(sb, "- FLAG: %s\n", flag)
	}
	sb.WriteString("\n")
}

// Threshold values that mark a performance sample as problematic in context.
const (
	highCPUPercent   = 80.0
	highMemoryBytes  = int64(500 * 1024 * 1024)
	highDOMNodeCount = 5000
	slowLoadTime     = 5 * time.Second
	slowLargestPaint = 4 * time.Second
	slowFirstPaint   = 3 * time.Second
)

// performanceFlags returns human-readable issues for threshold violations.
func performanceFlags(sample *types.PerformanceSample) []string {
	var flags []string
	if sample.CPUPercent >= highCPUPercent {
		flags = append(flags, fmt.Sprintf("high CPU usage (%.1f%%)", sample.CPUPercent))
	}
	if sample.MemoryBytes >= highMemoryBytes {
		flags = append(flags, fmt.Sprintf("high memory usage (%d bytes)", sample.MemoryBytes))
	}
	if sample.DOMNodeCount >= highDOMNodeCount {
		flags = append(flags, fmt.Sprintf("excessive DOM size (%d nodes)", sample.DOMNodeCount))
	}
	if sample.LoadTime >= slowLoadTime {
		flags = append(flags, fmt.Sprintf("slow page load (%s)", sample.LoadTime))
	}
	if sample.FirstPaint >= slowFirstPaint {
		flags = append(flags, fmt.Sprintf("slow first contentful paint (%s)", sample.FirstPaint))
	}
	if sample.LargestPaint >= slowLargestPaint {
		flags = append(flags, fmt.Sprintf("slow largest contentful paint (%s)", sample.LargestPaint))
	}
	return flags
}

// outputFormatInstructions trails every narrative context so the response
// interpreter's structured strategy has something to find.
func outputFormatInstructions(provideFixes bool) string {
	var sb strings.Builder
	sb.WriteString("## Expected Output Format\n\n")
	sb.WriteString("Respond with a single fenced JSON block of this shape:\n\n")
	sb.WriteString("```json\n{\n")
	sb.WriteString("  \"summary\": \"one paragraph\",\n")
	sb.WriteString("  \"issues\": [{\"title\": \"\", \"description\": \"\", \"severity\": \"low|medium|high|critical\", \"category\": \"\"")
	if provideFixes {
		sb.WriteString(", \"suggested_fixes\": [\"\"]")
	}
	sb.WriteString("}],\n")
	sb.WriteString("  \"recommendations\": [{\"title\": \"\", \"description\": \"\", \"type\": \"\", \"priority\": \"low|medium|high|urgent\"}],\n")
	sb.WriteString("  \"performance\": {\"grade\": \"A-F\", \"score\": 0, \"metrics\": []}\n")
	sb.WriteString("}\n```\n")
	sb.WriteString("If you cannot produce JSON, use '## Summary', '## Issues', '## Recommendations', and '## Performance' sections with numbered items.\n")
	return sb.String()
}

func (b *Builder) redactText(text string) string {
	if b.redactor == nil {
		return text
	}
	return b.redactor.Redact(text)
}

// splitConsoleBySeverity partitions messages into errors and warnings,
// preserving order.
func splitConsoleBySeverity(messages []types.ConsoleMessage) (errors, warnings []types.ConsoleMessage) {
	for _, msg := range messages {
		switch msg.Level {
		case types.LogError:
			errors = append(errors, msg)
		case types.LogWarning:
			warnings = append(warnings, msg)
		}
	}
	return errors, warnings
}

// capOldest keeps the first limit entries. Buffered telemetry is oldest
// first, so the cap keeps the oldest records within the window.
func capOldest[T any](entries []T, limit int) []T {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	return entries[:limit]
}

func compileURLGlob(pattern string) func(string) bool {
	if pattern == "" {
		return func(string) bool { return true }
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		debugLog.Warnf("Invalid URL filter glob %q: %v", pattern, err)
		return func(string) bool { return true }
	}
	return g.Match
}
