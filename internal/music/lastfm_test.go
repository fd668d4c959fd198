package music

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	return &Client{
		APIKey:     "test-key",
		BaseURL:    ts.URL,
		HTTPClient: &http.Client{Timeout: time.Second},
		Log:        zap.NewNop(),
	}, ts
}

func TestTopTracksByGenre(t *testing.T) {
	var gotQuery map[string]string
	c, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"method": r.URL.Query().Get("method"),
			"tag":    r.URL.Query().Get("tag"),
			"limit":  r.URL.Query().Get("limit"),
		}
		w.Write([]byte(`{"tracks":{"track":[
			{"name":"Yesterday","artist":{"name":"The Beatles"}},
			{"name":"","artist":{"name":"Nobody"}},
			{"name":"Imagine","artist":{"name":"John Lennon"}}
		]}}`))
	})
	defer ts.Close()

	tracks, err := c.TopTracksByGenre(context.Background(), "Rock", 20)
	require.NoError(t, err)
	assert.Equal(t, "tag.gettoptracks", gotQuery["method"])
	assert.Equal(t, "rock", gotQuery["tag"], "tag is lowercased")
	assert.Equal(t, "20", gotQuery["limit"])

	// The entry without a name is dropped.
	require.Len(t, tracks, 2)
	assert.Equal(t, Track{Name: "Yesterday", Artist: "The Beatles"}, tracks[0])
}

func TestTopTracksSkipsAnyAndEmptyGenre(t *testing.T) {
	called := false
	c, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) { called = true })
	defer ts.Close()

	for _, genre := range []string{"", "any", "ANY", "  "} {
		tracks, err := c.TopTracksByGenre(context.Background(), genre, 20)
		require.NoError(t, err)
		assert.Empty(t, tracks)
	}
	assert.False(t, called, "no API call for an unset genre")
}

func TestTopTracksNilClient(t *testing.T) {
	var c *Client
	tracks, err := c.TopTracksByGenre(context.Background(), "rock", 20)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestTopTracksUpstreamError(t *testing.T) {
	c, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer ts.Close()

	_, err := c.TopTracksByGenre(context.Background(), "rock", 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rock")
}

func TestGenreBlurbStripsMarkup(t *testing.T) {
	c, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tag.getinfo", r.URL.Query().Get("method"))
		w.Write([]byte(`{"tag":{"wiki":{"summary":"Rock is a genre. <a href=\"https://www.last.fm/tag/rock\">Read more</a>"}}}`))
	})
	defer ts.Close()

	blurb, err := c.GenreBlurb(context.Background(), "rock")
	require.NoError(t, err)
	assert.Equal(t, "Rock is a genre. Read more", blurb)
}

func TestFormatTracksForPrompt(t *testing.T) {
	assert.Empty(t, FormatTracksForPrompt(nil, 20))

	out := FormatTracksForPrompt([]Track{
		{Name: "Yesterday", Artist: "The Beatles"},
		{Name: "Imagine", Artist: "John Lennon"},
	}, 20)
	assert.Equal(t, "Popular tracks in this genre include:\n- Yesterday by The Beatles\n- Imagine by John Lennon", out)

	capped := FormatTracksForPrompt([]Track{
		{Name: "A", Artist: "X"}, {Name: "B", Artist: "Y"}, {Name: "C", Artist: "Z"},
	}, 2)
	assert.NotContains(t, capped, "- C by Z")
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", StripHTML("  plain text  "))
	assert.Equal(t, "Hello world", StripHTML(`Hello <b>world</b>`))
	assert.Equal(t, "line one\nline two", StripHTML("<p>line one</p><p>line two</p>"))
	assert.Equal(t, "kept", StripHTML("<script>dropped()</script>kept"))
}
