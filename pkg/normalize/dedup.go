package normalize

import (
	"fmt"
	"hash/fnv"

	"github.com/probelabs/webscope/pkg/types"
)

// DedupConsoleMessages removes duplicate console messages from ordered input,
// keeping the first occurrence. Two messages are duplicates when they share
// level, message hash, source URL, and source line.
func DedupConsoleMessages(messages []types.ConsoleMessage) []types.ConsoleMessage {
	if len(messages) < 2 {
		return messages
	}
	seen := make(map[string]struct{}, len(messages))
	out := make([]types.ConsoleMessage, 0, len(messages))
	for _, msg := range messages {
		key := consoleDedupKey(msg)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, msg)
	}
	return out
}

// DedupNetworkRequests removes duplicate network requests from ordered input,
// keeping the first occurrence. Two requests are duplicates when they share
// method, URL hash, and second-granularity timestamp.
func DedupNetworkRequests(requests []types.NetworkRequest) []types.NetworkRequest {
	if len(requests) < 2 {
		return requests
	}
	seen := make(map[string]struct{}, len(requests))
	out := make([]types.NetworkRequest, 0, len(requests))
	for _, req := range requests {
		key := networkDedupKey(req)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, req)
	}
	return out
}

func consoleDedupKey(msg types.ConsoleMessage) string {
	srcURL := ""
	srcLine := 0
	if msg.Source != nil {
		srcURL = msg.Source.URL
		srcLine = msg.Source.Line
	}
	return fmt.Sprintf("%s|%x|%s|%d", msg.Level, hashText(msg.Text), srcURL, srcLine)
}

func networkDedupKey(req types.NetworkRequest) string {
	return fmt.Sprintf("%s|%x|%d", req.Method, hashText(req.URL), req.Timestamp.Unix())
}

func hashText(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}
