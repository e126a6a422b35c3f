package telemetry

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/probelabs/webscope/pkg/types"
)

// SummarizeDOM parses page HTML and reduces it to the structural summary
// stored on snapshots: node count, maximum depth, per-element histogram, and
// the document title.
func SummarizeDOM(pageHTML string) (*types.DOMSummary, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}

	summary := &types.DOMSummary{
		ElementCount: make(map[string]int),
	}
	walkDOM(doc, 0, summary)
	return summary, nil
}

func walkDOM(n *html.Node, depth int, summary *types.DOMSummary) {
	if n.Type == html.ElementNode {
		summary.NodeCount++
		summary.ElementCount[n.Data]++
		if depth > summary.MaxDepth {
			summary.MaxDepth = depth
		}
		if n.Data == "title" && summary.Title == "" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				summary.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkDOM(c, depth+1, summary)
	}
}
