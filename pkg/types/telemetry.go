package types

import "time"

// SourceLocation points at the script position that produced a console message
// or that an issue refers to.
type SourceLocation struct {
	URL    string `json:"url,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// ConsoleMessage is a single captured console entry. Immutable once appended
// to a session buffer.
type ConsoleMessage struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Level      LogLevel        `json:"level"`
	Text       string          `json:"text"`
	Source     *SourceLocation `json:"source,omitempty"`
	StackTrace string          `json:"stack_trace,omitempty"`
}

// NetworkRequest is a single captured HTTP exchange. Immutable once finalized.
// Header keys are stored lowercase; normalization de-duplicates
// case-insensitively keeping the first value seen.
type NetworkRequest struct {
	ID              string            `json:"id"`
	CorrelationID   string            `json:"correlation_id,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
	URL             string            `json:"url"`
	Method          string            `json:"method"`
	StatusCode      int               `json:"status_code"`
	RequestHeaders  map[string]string `json:"request_headers,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	RequestBody     string            `json:"request_body,omitempty"`
	ResponseBody    string            `json:"response_body,omitempty"`
	Duration        time.Duration     `json:"duration_ms"`
	Failed          bool              `json:"failed"`
	ErrorText       string            `json:"error_text,omitempty"`
}

// IsError reports whether the request ended in a transport failure or an HTTP
// error status.
func (r *NetworkRequest) IsError() bool {
	return r.Failed || r.StatusCode >= 400
}

// PerformanceSample is a single captured performance measurement. Immutable
// once appended to a session buffer.
type PerformanceSample struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	CPUPercent    float64            `json:"cpu_percent"`
	MemoryBytes   int64              `json:"memory_bytes"`
	DOMNodeCount  int                `json:"dom_node_count"`
	LoadTime      time.Duration      `json:"load_time_ms,omitempty"`
	FirstPaint    time.Duration      `json:"first_contentful_paint_ms,omitempty"`
	LargestPaint  time.Duration      `json:"largest_contentful_paint_ms,omitempty"`
	CustomMetrics map[string]float64 `json:"custom_metrics,omitempty"`
}
