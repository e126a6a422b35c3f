package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeDOM(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Checkout — Example</title></head>
<body>
  <div id="root">
    <ul>
      <li>one</li>
      <li>two</li>
    </ul>
  </div>
</body>
</html>`

	summary, err := SummarizeDOM(page)
	require.NoError(t, err)

	assert.Equal(t, "Checkout — Example", summary.Title)
	assert.Equal(t, 2, summary.ElementCount["li"])
	assert.Equal(t, 1, summary.ElementCount["ul"])
	assert.Positive(t, summary.NodeCount)
	assert.Greater(t, summary.MaxDepth, 3)
}

func TestSummarizeDOMToleratesMalformedHTML(t *testing.T) {
	// html.Parse repairs rather than rejects; unclosed tags still summarize.
	summary, err := SummarizeDOM("<div><p>unclosed")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ElementCount["div"])
	assert.Equal(t, 1, summary.ElementCount["p"])
	assert.Empty(t, summary.Title)
}

func TestSnapshotCarriesDOMSummary(t *testing.T) {
	agg := newTestAggregator(10, 10, 10)
	snapshot := agg.Snapshot("s1", SnapshotOptions{
		PageHTML: "<html><head><title>t</title></head><body></body></html>",
	})
	require.NotNil(t, snapshot.DOM)
	assert.Equal(t, "t", snapshot.DOM.Title)
}
