// Package main provides a headless demonstration of the webscope core: it
// wires the aggregator, session manager, context builder, and response parser
// together, feeds a canned event stream, and prints the resulting session
// export. The browser instrumentation and model invocation collaborators are
// out of process; this binary stands in for both.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/probelabs/webscope/pkg/config"
	"github.com/probelabs/webscope/pkg/contextbuilder"
	"github.com/probelabs/webscope/pkg/llm/parser"
	"github.com/probelabs/webscope/pkg/normalize"
	"github.com/probelabs/webscope/pkg/redact"
	"github.com/probelabs/webscope/pkg/session"
	"github.com/probelabs/webscope/pkg/telemetry"
	"github.com/probelabs/webscope/pkg/types"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default ~/.webscope/config.yaml)")
	format := flag.String("format", "text", "export format: json, text, or markdown")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("webscope-headless v%s\n", version)
		return
	}

	if err := run(*configPath, session.ExportFormat(*format)); err != nil {
		log.Fatalf("webscope-headless: %v", err)
	}
}

func run(configPath string, format session.ExportFormat) error {
	if configPath == "" {
		defaultPath, err := config.DefaultPath()
		if err == nil {
			configPath = defaultPath
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	redactor := redact.NewEngine(redact.Options{
		DisabledPatterns: append([]string{"url"}, cfg.Redaction.DisabledPatterns...),
		CustomPatterns:   customPatterns(cfg),
		PatternTimeout:   cfg.Redaction.PatternTimeout,
	})

	aggregator := telemetry.NewAggregator(cfg.Telemetry)
	sessions := session.NewManager()
	builder := contextbuilder.NewBuilder(cfg.Context, redactor)

	sess, err := sessions.CreateSession("demo", "https://app.example.com")
	if err != nil {
		return err
	}

	feedDemoTelemetry(aggregator, sess.ID)

	snapshot := aggregator.Snapshot(sess.ID, telemetry.SnapshotOptions{Window: time.Hour})
	if err := sessions.AddSnapshot(sess.ID, snapshot); err != nil {
		return err
	}

	prompt := builder.BuildNarrativeContext(snapshot, contextbuilder.AnalysisOptions{
		AnalyzeErrors:  true,
		AnalyzeNetwork: true,
		ProvideFixes:   true,
	})
	fmt.Fprintf(os.Stderr, "assembled %d bytes of model context\n", len(prompt))

	// Stand-in for the AI-invocation collaborator: a canned free-text answer
	// exercising the heuristic parsing path.
	response := "## Summary\nThe page fails to load its profile data.\n\n" +
		"## Issues\n1. Uncaught TypeError reading profile of undefined\nFix: guard the profile lookup\n\n" +
		"## Recommendations\n1. Add retry with backoff to the profile fetch\n"
	result := parser.Parse(response, "demo-model", 512)
	if err := sessions.AddAnalysisResult(sess.ID, result); err != nil {
		return err
	}
	if err := sessions.End(sess.ID); err != nil {
		return err
	}

	exported, err := sessions.Export(sess.ID, format)
	if err != nil {
		return err
	}
	fmt.Println(string(exported))
	return nil
}

func customPatterns(cfg *config.Config) []redact.CustomPattern {
	patterns := make([]redact.CustomPattern, 0, len(cfg.Redaction.CustomPatterns))
	for _, p := range cfg.Redaction.CustomPatterns {
		patterns = append(patterns, redact.CustomPattern{
			Name:        p.Name,
			Pattern:     p.Pattern,
			Replacement: p.Replacement,
		})
	}
	return patterns
}

// feedDemoTelemetry appends a small canned event stream the way the browser
// instrumentation collaborator would.
func feedDemoTelemetry(aggregator *telemetry.Aggregator, sessionID string) {
	now := time.Now()
	opts := normalize.Options{Origin: now}

	aggregator.AppendConsoleMessage(sessionID, normalize.ConsoleMessage(types.ConsoleMessage{
		Level: types.LogError,
		Text:  "Uncaught TypeError: Cannot read properties of undefined (reading 'profile')",
		Source: &types.SourceLocation{
			URL:  "https://app.example.com/static/app.js",
			Line: 1204,
		},
	}, opts))
	aggregator.AppendConsoleMessage(sessionID, normalize.ConsoleMessage(types.ConsoleMessage{
		Level: types.LogWarning,
		Text:  "Slow resource: /api/profile took 4200ms",
	}, opts))
	aggregator.AppendNetworkRequest(sessionID, normalize.NetworkRequest(types.NetworkRequest{
		URL:        "https://app.example.com/api/profile",
		Method:     "get",
		StatusCode: 500,
		Duration:   4200 * time.Millisecond,
		ErrorText:  "internal server error",
	}, opts))
	aggregator.AppendPerformanceSample(sessionID, normalize.PerformanceSample(types.PerformanceSample{
		CPUPercent:   34.5,
		MemoryBytes:  180 * 1024 * 1024,
		DOMNodeCount: 2300,
		LoadTime:     2800 * time.Millisecond,
	}, opts))
}
