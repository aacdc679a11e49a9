package annotate

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/relstamp/internal/clock"
	"github.com/imgajeed76/relstamp/internal/logging"
	"github.com/imgajeed76/relstamp/internal/reltime"
	"github.com/imgajeed76/relstamp/internal/timeparse"
)

var now = time.Date(2024, 8, 20, 16, 2, 23, 144_000_000, time.UTC)

const scoreboard = `<!DOCTYPE html>
<html><head><title>Scores</title></head>
<body>
<table>
<tr><td>alifeee</td><td class="timestamp">2024-08-17 16:02:23.144</td></tr>
<tr><td>jman</td><td class="timestamp">2024-08-20 13:32:23.144</td></tr>
<tr><td>somebody909</td><td class="score timestamp">2024-08-20 16:00:23.144</td></tr>
<tr><td>ghost</td><td class="timestamp">not a date</td></tr>
<tr><td>nobody</td><td>2024-08-17 16:02:23.144</td></tr>
</table>
</body></html>`

func newTestAnnotator(t *testing.T, opts ...Option) *Annotator {
	t.Helper()
	base := []Option{
		WithParser(timeparse.New(nil, time.UTC)),
		WithClock(clock.Fixed(now)),
		WithLogger(logging.Discard()),
	}
	a, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return a
}

func loadString(t *testing.T, s string) *Page {
	t.Helper()
	p, err := Load(strings.NewReader(s))
	require.NoError(t, err)
	return p
}

func times(p *Page) []*goquery.Selection {
	var out []*goquery.Selection
	p.Document().Find(".timestamp").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

func TestAnnotate_Scoreboard(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)
	p := loadString(t, scoreboard)

	report, err := a.Annotate(p)
	require.NoError(t, err)
	require.Len(t, report.Elements, 4)
	assert.Equal(t, 3, report.Annotated())
	assert.Equal(t, 1, report.Skipped())
	assert.Error(t, report.Err())

	cells := times(p)
	require.Len(t, cells, 4)

	want := []struct {
		datetime string
		text     string
	}{
		{"2024-08-17 16:02:23.144", "3 days ago"},
		{"2024-08-20 13:32:23.144", "2 hours ago"},
		{"2024-08-20 16:00:23.144", "120 seconds ago"},
	}
	for i, w := range want {
		tm := cells[i].ChildrenFiltered("time")
		require.Equal(t, 1, tm.Length(), "cell %d should hold exactly one <time>", i)
		assert.Equal(t, 1, cells[i].Children().Length())
		dt, ok := tm.Attr("datetime")
		require.True(t, ok)
		assert.Equal(t, w.datetime, dt)
		assert.Equal(t, w.text, tm.Text())
	}

	// The unparseable cell is left exactly as it was.
	assert.Equal(t, 0, cells[3].Find("time").Length())
	assert.Equal(t, "not a date", cells[3].Text())

	// Unmarked cells are never touched.
	assert.Equal(t, 3, p.Document().Find("time").Length())
	assert.Equal(t, 0, p.Document().Find("tr:last-child td time").Length())
}

func TestAnnotate_DatetimeIsOriginalTextVerbatim(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)
	const raw = "\n   2024-08-17 16:02:23.144  "
	p := loadString(t, `<html><body><span class="timestamp">`+raw+`</span></body></html>`)

	_, err := a.Annotate(p)
	require.NoError(t, err)

	dt, ok := p.Document().Find("span.timestamp > time").Attr("datetime")
	require.True(t, ok)
	assert.Equal(t, raw, dt)
}

func TestAnnotate_TextContentIncludesDescendants(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)
	p := loadString(t, `<html><body><p class="timestamp"><b>2024-08-17</b> 16:02:23.144</p></body></html>`)

	report, err := a.Annotate(p)
	require.NoError(t, err)
	require.Len(t, report.Elements, 1)
	assert.Equal(t, "2024-08-17 16:02:23.144", report.Elements[0].Text)
	assert.Equal(t, 0, p.Document().Find("b").Length())
	assert.Equal(t, "3 days ago", p.Document().Find("p > time").Text())
}

func TestAnnotate_EscapesAttribute(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t, WithPolicy(PolicyLegacy))
	p := loadString(t, `<html><body><span class="timestamp">&quot;&gt;&lt;script&gt;</span></body></html>`)

	_, err := a.Annotate(p)
	require.NoError(t, err)

	out, err := p.HTML()
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `datetime="&#34;&gt;&lt;script&gt;"`)
}

func TestAnnotate_DocumentOrder(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)
	p := loadString(t, `<html><body>
<i class="timestamp">2024-08-20 16:02:22</i>
<div><i class="timestamp">2024-08-20 15:02:23</i></div>
<i class="timestamp">2024-08-19 16:02:23</i>
</body></html>`)

	report, err := a.Annotate(p)
	require.NoError(t, err)

	var got []string
	for _, r := range report.Elements {
		got = append(got, r.Label.String())
	}
	assert.Equal(t, []string{"1 seconds", "60 minutes", "24 hours"}, got)
	for i, r := range report.Elements {
		assert.Equal(t, i, r.Index)
	}
}

func TestAnnotate_OnlyOnce(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)
	p := loadString(t, scoreboard)

	_, err := a.Annotate(p)
	require.NoError(t, err)
	assert.True(t, p.Annotated())
	before, err := p.HTML()
	require.NoError(t, err)

	_, err = a.Annotate(p)
	assert.ErrorIs(t, err, ErrAlreadyAnnotated)

	after, err := p.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAnnotate_NoMarkedElements(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)
	p := loadString(t, `<html><body><p>nothing here</p></body></html>`)

	report, err := a.Annotate(p)
	require.NoError(t, err)
	assert.Empty(t, report.Elements)
	assert.NoError(t, report.Err())
	assert.True(t, p.Annotated())
}

func TestAnnotate_FailPolicyLeavesPageUntouched(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t, WithPolicy(PolicyFail))
	p := loadString(t, scoreboard)
	before, err := p.HTML()
	require.NoError(t, err)

	_, err = a.Annotate(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, reltime.ErrInvalidTimestamp)
	assert.Contains(t, err.Error(), "element 3")
	assert.False(t, p.Annotated())

	after, err := p.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAnnotate_FutureTimestamp(t *testing.T) {
	t.Parallel()
	page := `<html><body><span class="timestamp">2024-08-20 16:03:23.144</span></body></html>`

	t.Run("Skip", func(t *testing.T) {
		a := newTestAnnotator(t)
		p := loadString(t, page)
		report, err := a.Annotate(p)
		require.NoError(t, err)
		assert.ErrorIs(t, report.Elements[0].Err, reltime.ErrFutureTimestamp)
		assert.Equal(t, 0, p.Document().Find("time").Length())
	})

	t.Run("Legacy", func(t *testing.T) {
		a := newTestAnnotator(t, WithPolicy(PolicyLegacy))
		p := loadString(t, page)
		report, err := a.Annotate(p)
		require.NoError(t, err)
		assert.ErrorIs(t, report.Elements[0].Err, reltime.ErrFutureTimestamp)
		assert.Equal(t, "-60 seconds ago", p.Document().Find("time").Text())
	})
}

func TestAnnotate_LegacyInvalid(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t, WithPolicy(PolicyLegacy))
	p := loadString(t, scoreboard)

	report, err := a.Annotate(p)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Annotated())

	cells := times(p)
	tm := cells[3].Find("time")
	assert.Equal(t, "NaN seconds ago", tm.Text())
	dt, _ := tm.Attr("datetime")
	assert.Equal(t, "not a date", dt)
}

func TestAnnotate_CustomClass(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t, WithClass("when"))
	p := loadString(t, `<html><body>
<span class="when">2024-08-17 16:02:23.144</span>
<span class="timestamp">2024-08-17 16:02:23.144</span>
</body></html>`)

	report, err := a.Annotate(p)
	require.NoError(t, err)
	assert.Len(t, report.Elements, 1)
	assert.Equal(t, 1, p.Document().Find(".when > time").Length())
	assert.Equal(t, 0, p.Document().Find(".timestamp > time").Length())
	assert.Equal(t, "when", a.Class())
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	for _, class := range []string{"", "a b", "a,b", ".timestamp", "ts:hover", "9lives", "a>b"} {
		_, err := New(WithClass(class))
		assert.ErrorIs(t, err, ErrInvalidClass, "class %q", class)
	}
	for _, class := range []string{"timestamp", "score-time", "_t"} {
		_, err := New(WithClass(class))
		assert.NoError(t, err, "class %q", class)
	}

	_, err := New(WithPolicy("explode"))
	assert.Error(t, err)

	a, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultClass, a.Class())
	assert.Equal(t, PolicySkip, a.Policy())
}

func TestRewrite(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)

	var out bytes.Buffer
	report, err := a.Rewrite(strings.NewReader(scoreboard), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Annotated())
	assert.Contains(t, out.String(), `<time datetime="2024-08-17 16:02:23.144">3 days ago</time>`)
	assert.True(t, strings.HasPrefix(out.String(), "<!DOCTYPE html>"))
}

func TestRewrite_FailWritesNothing(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t, WithPolicy(PolicyFail))

	var out bytes.Buffer
	_, err := a.Rewrite(strings.NewReader(scoreboard), &out)
	require.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestLoad_Latin1(t *testing.T) {
	t.Parallel()
	a := newTestAnnotator(t)
	page := []byte("<html><body><p>caf\xe9</p><span class=\"timestamp\">2024-08-17</span></body></html>")

	var out bytes.Buffer
	_, err := a.Rewrite(bytes.NewReader(page), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "café")
}

func TestLoad_ReadError(t *testing.T) {
	t.Parallel()
	_, err := Load(errReader{})
	assert.Error(t, err)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	for _, p := range Policies {
		got, err := ParsePolicy(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, got)

	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}

func BenchmarkRewrite(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<html><body><table>\n")
	for i := 0; i < 1000; i++ {
		sb.WriteString(`<tr><td>player</td><td class="timestamp">2024-08-17 16:02:23.144</td></tr>` + "\n")
	}
	sb.WriteString("</table></body></html>")
	page := sb.String()

	a, err := New(
		WithParser(timeparse.New(nil, time.UTC)),
		WithClock(clock.Fixed(now)),
		WithLogger(logging.Discard()),
	)
	require.NoError(b, err)

	b.SetBytes(int64(len(page)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Rewrite(strings.NewReader(page), io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
