package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/variance"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestDashboard(t *testing.T) {
	empty := render(t, Dashboard(nil, core.LimiterStatus{Active: 1, MaxConcurrent: 4}))
	assert.Contains(t, empty, "<title>Variance analysis</title>")
	assert.Contains(t, empty, "1 of 4 analysis slots in use.")
	assert.Contains(t, empty, "No runs yet.")

	id := uuid.New()
	html := render(t, Dashboard([]core.RunInfo{{
		ID:           id,
		Source:       `q1 & "q2".csv`,
		CreatedAt:    time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		Rows:         120,
		Records:      36,
		LatestPeriod: "2024-02",
	}}, core.LimiterStatus{MaxConcurrent: 4}))
	assert.NotContains(t, html, "No runs yet.")
	assert.Contains(t, html, `<a href="/runs/`+id.String()+`">q1 &amp; &#34;q2&#34;.csv</a>`)
	assert.Contains(t, html, "2024-03-01 12:00:00 UTC")
	assert.Contains(t, html, `<td class="num">120</td>`)
}

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert(core.UserMessage{Message: "No <time> column", Code: "SCH001"}))
	assert.Contains(t, html, "No &lt;time&gt; column")
	assert.Contains(t, html, "Code: SCH001")
	assert.NotContains(t, html, "<p>", "empty action is omitted")
	assert.NotContains(t, html, "<html")

	page := render(t, ErrorPage(core.UserMessage{Message: "Busy", Action: "Retry shortly.", Code: "ANL001"}))
	assert.Contains(t, page, "<title>Error</title>")
	assert.Contains(t, page, "<p>Retry shortly.</p>")
	assert.Contains(t, page, "</div></body></html>")
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.5%", formatPercent(variance.Percent{Value: 0.125, Defined: true}))
	assert.Equal(t, "-100.0%", formatPercent(variance.Percent{Value: -1, Defined: true}))
	assert.Equal(t, variance.Undefined, formatPercent(variance.Percent{}))
}
