// Package normalize canonicalizes raw telemetry records before they enter the
// session buffers. Every transform is pure and stateless; callers may run them
// concurrently without coordination.
package normalize

import (
	"net/url"
	"strings"
	"time"

	"github.com/probelabs/webscope/pkg/types"
)

const (
	// truncationMarker terminates any text cut at a limit so readers can tell
	// the record is partial.
	truncationMarker = "…"

	defaultMaxTextLen  = 4096
	defaultMaxBodyLen  = 2048
	defaultMaxStackLen = 2048
)

// Options controls canonicalization. The zero value applies the default limits
// and keeps URL query strings.
type Options struct {
	// Origin is the absolute time base. Records with a zero timestamp are
	// assigned Origin; records are never moved otherwise.
	Origin time.Time

	// StripQuery drops the query string when canonicalizing URLs.
	StripQuery bool

	MaxTextLen  int
	MaxBodyLen  int
	MaxStackLen int
}

func (o Options) maxTextLen() int {
	if o.MaxTextLen > 0 {
		return o.MaxTextLen
	}
	return defaultMaxTextLen
}

func (o Options) maxBodyLen() int {
	if o.MaxBodyLen > 0 {
		return o.MaxBodyLen
	}
	return defaultMaxBodyLen
}

func (o Options) maxStackLen() int {
	if o.MaxStackLen > 0 {
		return o.MaxStackLen
	}
	return defaultMaxStackLen
}

// ConsoleMessage returns a canonicalized copy of msg.
func ConsoleMessage(msg types.ConsoleMessage, opts Options) types.ConsoleMessage {
	msg.Timestamp = normalizeTimestamp(msg.Timestamp, opts.Origin)
	msg.Level = types.ParseLogLevel(string(msg.Level))
	msg.Text = Truncate(msg.Text, opts.maxTextLen())
	msg.StackTrace = Truncate(msg.StackTrace, opts.maxStackLen())
	if msg.Source != nil {
		src := *msg.Source
		src.URL = URL(src.URL, opts.StripQuery)
		if src.Line < 0 {
			src.Line = 0
		}
		if src.Column < 0 {
			src.Column = 0
		}
		msg.Source = &src
	}
	return msg
}

// NetworkRequest returns a canonicalized copy of req.
func NetworkRequest(req types.NetworkRequest, opts Options) types.NetworkRequest {
	req.Timestamp = normalizeTimestamp(req.Timestamp, opts.Origin)
	req.URL = URL(req.URL, opts.StripQuery)
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if req.Method == "" {
		req.Method = "GET"
	}
	req.StatusCode = clampInt(req.StatusCode, 0, 599)
	req.RequestHeaders = Headers(req.RequestHeaders)
	req.ResponseHeaders = Headers(req.ResponseHeaders)
	req.RequestBody = Truncate(req.RequestBody, opts.maxBodyLen())
	req.ResponseBody = Truncate(req.ResponseBody, opts.maxBodyLen())
	if req.Duration < 0 {
		req.Duration = 0
	}
	return req
}

// PerformanceSample returns a canonicalized copy of sample with numeric fields
// clamped to sane ranges.
func PerformanceSample(sample types.PerformanceSample, opts Options) types.PerformanceSample {
	sample.Timestamp = normalizeTimestamp(sample.Timestamp, opts.Origin)
	sample.CPUPercent = clampFloat(sample.CPUPercent, 0, 100)
	if sample.MemoryBytes < 0 {
		sample.MemoryBytes = 0
	}
	if sample.DOMNodeCount < 0 {
		sample.DOMNodeCount = 0
	}
	if sample.LoadTime < 0 {
		sample.LoadTime = 0
	}
	if sample.FirstPaint < 0 {
		sample.FirstPaint = 0
	}
	if sample.LargestPaint < 0 {
		sample.LargestPaint = 0
	}
	return sample
}

// URL canonicalizes raw to scheme://host/path form. Fragment is always
// dropped; the query string survives unless stripQuery is set. Unparseable
// input is returned trimmed but otherwise untouched.
func URL(raw string, stripQuery bool) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	if stripQuery {
		u.RawQuery = ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Headers lowercases header keys and de-duplicates them case-insensitively,
// keeping the first value seen per key in map iteration-independent order
// (lexicographically smallest original key wins on collision).
func Headers(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	winner := make(map[string]string, len(headers))
	for key, value := range headers {
		lower := strings.ToLower(key)
		prev, seen := winner[lower]
		if !seen || key < prev {
			winner[lower] = key
			out[lower] = value
		}
	}
	return out
}

// Truncate cuts text at limit runes, appending the truncation marker when
// anything was removed.
func Truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationMarker
}

func normalizeTimestamp(ts, origin time.Time) time.Time {
	if ts.IsZero() {
		if origin.IsZero() {
			return time.Now().UTC()
		}
		return origin.UTC()
	}
	return ts.UTC()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
