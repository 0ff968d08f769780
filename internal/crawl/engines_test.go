package crawl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/pkg/serpapi"
)

// fakeFetcher serves canned markup for any URL.
type fakeFetcher struct {
	html    string
	lastURL string
}

func (f *fakeFetcher) HTML(_ context.Context, url string) (string, error) {
	f.lastURL = url
	return f.html, nil
}

func (f *fakeFetcher) Text(_ context.Context, url string) (string, error) {
	f.lastURL = url
	return f.html, nil
}

func (f *fakeFetcher) Close() error { return nil }

const googleFixture = `<html><body>
<div class="g">
  <a href="https://www.instagram.com/mayalifts/"><h3>Maya Lifts (@mayalifts) &middot; Instagram</h3></a>
  <div class="VwiC3b y354">12.3K followers &middot; stan.store/mayalifts</div>
</div>
<div class="g">
  <a href="https://www.tiktok.com/@coachdan"><h3>Coach Dan</h3></a>
  <div class="VwiC3b">Daily workouts &middot; stan.store/coachdan</div>
</div>
</body></html>`

func TestGoogleEngine_ParsesResults(t *testing.T) {
	fetcher := &fakeFetcher{html: googleFixture}
	engine := NewGoogleEngine(fetcher)

	rows, err := engine.Search(context.Background(), `site:instagram.com "stan.store"`, 10)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "https://www.instagram.com/mayalifts/", rows[0].URL)
	assert.Equal(t, "Maya Lifts (@mayalifts) · Instagram", rows[0].Title)
	assert.Contains(t, rows[0].Snippet, "12.3K followers")
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)

	assert.Contains(t, fetcher.lastURL, "google.com/search")
	assert.Contains(t, fetcher.lastURL, "num=10")
}

func TestGoogleEngine_ZeroCapReturnsAllRows(t *testing.T) {
	fetcher := &fakeFetcher{html: googleFixture}
	engine := NewGoogleEngine(fetcher)

	rows, err := engine.Search(context.Background(), "q", 0)
	require.NoError(t, err)

	assert.Len(t, rows, 2)
	assert.Contains(t, fetcher.lastURL, "num=20", "uncapped queries still request a full page")
}

func TestGoogleEngine_BlockPage(t *testing.T) {
	fetcher := &fakeFetcher{html: `<html>Our systems have detected unusual traffic.</html>`}
	engine := NewGoogleEngine(fetcher)

	_, err := engine.Search(context.Background(), "anything", 10)
	require.ErrorIs(t, err, ErrBlocked)
}

const ddgFixture = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.instagram.com%2Fmayalifts%2F&amp;rut=abc">Maya Lifts (@mayalifts)</a>
  <a class="result__snippet" href="#">12.3K followers - stan.store/mayalifts</a>
</div>
<div class="result">
  <a class="result__a" href="https://stan.store/coachdan">Coach Dan | Stan Store</a>
  <a class="result__snippet" href="#">Daily workout templates</a>
</div>
</body></html>`

func TestDuckDuckGoEngine_ParsesAndUnwrapsRedirects(t *testing.T) {
	fetcher := &fakeFetcher{html: ddgFixture}
	engine := NewDuckDuckGoEngine(fetcher)

	rows, err := engine.Search(context.Background(), `site:instagram.com "stan.store"`, 10)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "https://www.instagram.com/mayalifts/", rows[0].URL)
	assert.Equal(t, "Maya Lifts (@mayalifts)", rows[0].Title)
	assert.Contains(t, rows[0].Snippet, "12.3K followers")
	assert.Equal(t, "https://stan.store/coachdan", rows[1].URL)

	assert.Contains(t, fetcher.lastURL, "html.duckduckgo.com")
}

func TestDuckDuckGoEngine_ZeroCapReturnsAllRows(t *testing.T) {
	fetcher := &fakeFetcher{html: ddgFixture}
	engine := NewDuckDuckGoEngine(fetcher)

	rows, err := engine.Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestResolveDDGRedirect(t *testing.T) {
	assert.Equal(t, "https://example.com/page",
		resolveDDGRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=x"))
	assert.Equal(t, "https://example.com", resolveDDGRedirect("https://example.com"))
	assert.Equal(t, "", resolveDDGRedirect("javascript:void(0)"))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Maya Lifts · Instagram", stripTags(`<b>Maya</b> Lifts &middot;
		<em>Instagram</em>`))
}

// stubSerpAPI implements the SerpAPI client interface without HTTP.
type stubSerpAPI struct {
	resp    *serpapi.SearchResponse
	numOpts int
}

func (s *stubSerpAPI) Search(_ context.Context, _ string, opts ...serpapi.SearchOption) (*serpapi.SearchResponse, error) {
	s.numOpts = len(opts)
	return s.resp, nil
}

func TestSerpAPIEngine_MapsOrganicResults(t *testing.T) {
	engine := NewSerpAPIEngine(&stubSerpAPI{resp: &serpapi.SearchResponse{
		OrganicResults: []serpapi.OrganicResult{
			{Position: 1, Title: "Maya Lifts", Link: "https://instagram.com/mayalifts", Snippet: "stan.store/mayalifts"},
			{Title: "No position", Link: "https://tiktok.com/@coachdan"},
		},
	}})

	rows, err := engine.Search(context.Background(), "q", 10)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "https://instagram.com/mayalifts", rows[0].URL)
	assert.Equal(t, 2, rows[1].Position) // positional fallback
	assert.NotEmpty(t, rows[0].Raw)
}

func TestSerpAPIEngine_ZeroCapKeepsClientDefault(t *testing.T) {
	stub := &stubSerpAPI{resp: &serpapi.SearchResponse{}}
	engine := NewSerpAPIEngine(stub)

	_, err := engine.Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Zero(t, stub.numOpts, "no page-size override for uncapped queries")
}
