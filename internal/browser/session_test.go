package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homePage = `<!doctype html>
<html><head><title>Home</title></head>
<body style="margin:0">
  <a id="about" href="/about">About</a>
  <button id="tab" onclick="document.title = 'Home - Tab'">Tab</button>
  <button id="reload-frame" onclick="document.querySelector('iframe').src = '/frame?n=2'">Reload frame</button>
  <input id="name" value="prefilled">
  <iframe src="/frame"></iframe>
  <div id="box" style="position:absolute; left:30px; top:1500px; width:40px; height:20px"></div>
  <div style="height:3000px"></div>
</body></html>`

func testServer() *httptest.Server {
	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("/about", page(`<!doctype html><title>About</title><p>About us</p>`))
	mux.HandleFunc("/frame", page(`<!doctype html><title>Frame</title><p>frame</p>`))
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!doctype html><title>Auth</title><p id="auth">%s</p>`, r.Header.Get("Authorization"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page(homePage)(w, r)
	})
	return httptest.NewServer(mux)
}

// launch starts a headless browser, or skips when none is installed.
func launch(t *testing.T) (*Session, *httptest.Server) {
	t.Helper()
	if testing.Short() {
		t.Skip("starts a browser")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no Chrome or Chromium found")
	}

	srv := testServer()
	t.Cleanup(srv.Close)

	s, err := Launch(Options{Width: 800, Height: 600, Username: "qa", Password: "s3cret"})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, srv
}

func open(t *testing.T, s *Session, url string) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	require.NoError(t, s.Open(ctx, url, 10*time.Second))
	return ctx
}

func TestSession(t *testing.T) {
	s, srv := launch(t)
	home := srv.URL + "/"

	t.Run("link navigation and back", func(t *testing.T) {
		ctx := open(t, s, home)

		navigated, err := s.WatchNavigation(ctx, 5*time.Second, func() error {
			return s.Click(ctx, "#about")
		})
		require.NoError(t, err)
		assert.True(t, navigated)

		require.NoError(t, s.WaitLoad(ctx, 10*time.Second))
		loc, err := s.Location(ctx)
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/about", loc.URL)
		assert.Equal(t, "About", loc.Title)

		require.NoError(t, s.Back(ctx))
		require.NoError(t, s.WaitLoad(ctx, 10*time.Second))
		loc, err = s.Location(ctx)
		require.NoError(t, err)
		assert.Equal(t, home, loc.URL)
	})

	t.Run("same page click does not navigate", func(t *testing.T) {
		ctx := open(t, s, home)

		navigated, err := s.WatchNavigation(ctx, time.Second, func() error {
			return s.Click(ctx, "#tab")
		})
		require.NoError(t, err)
		assert.False(t, navigated)

		loc, err := s.Location(ctx)
		require.NoError(t, err)
		assert.Equal(t, home, loc.URL)
		assert.Equal(t, "Home - Tab", loc.Title)
	})

	t.Run("iframe navigation is ignored", func(t *testing.T) {
		ctx := open(t, s, home)

		navigated, err := s.WatchNavigation(ctx, time.Second, func() error {
			found, err := s.ClickFirst(ctx, "#reload-frame")
			assert.True(t, found)
			return err
		})
		require.NoError(t, err)
		assert.False(t, navigated)
	})

	t.Run("click first without a match", func(t *testing.T) {
		ctx := open(t, s, home)

		found, err := s.ClickFirst(ctx, ".search-button")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("fill clears before typing", func(t *testing.T) {
		ctx := open(t, s, home)

		v, err := s.Value(ctx, "#name")
		require.NoError(t, err)
		assert.Equal(t, "prefilled", v)

		require.NoError(t, s.Fill(ctx, "#name", ""))
		v, err = s.Value(ctx, "#name")
		require.NoError(t, err)
		assert.Equal(t, "", v)

		require.NoError(t, s.Fill(ctx, "#name", "Ada"))
		v, err = s.Value(ctx, "#name")
		require.NoError(t, err)
		assert.Equal(t, "Ada", v)
	})

	t.Run("bounds are document coordinates", func(t *testing.T) {
		ctx := open(t, s, home)
		require.NoError(t, s.Evaluate(ctx, `() => window.scrollTo(0, 1000)`, nil))

		r, ok, err := s.Bounds(ctx, "#box")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Rect{X: 30, Y: 1500, Width: 40, Height: 20}, r)

		_, ok, err = s.Bounds(ctx, "#missing")
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = s.Bounds(ctx, "div[")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("basic auth header", func(t *testing.T) {
		ctx := open(t, s, srv.URL+"/auth")

		texts, err := s.Texts(ctx, "#auth")
		require.NoError(t, err)
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("qa:s3cret"))
		assert.Equal(t, []string{want}, texts)
	})

	t.Run("capture", func(t *testing.T) {
		ctx := open(t, s, home)

		data, err := s.Capture(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte("\x89PNG"), data[:4])
	})
}
