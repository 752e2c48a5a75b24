package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtime-svg/realtime-svg/internal/clientkind"
	"github.com/realtime-svg/realtime-svg/internal/session"
	"github.com/realtime-svg/realtime-svg/internal/store"
)

// newStreamServer runs a minimal stream route over a Memory store,
// mirroring the production handler glue.
func newStreamServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	manager := session.NewManager(mem)
	engine := NewEngine(mem)

	router := gin.New()
	router.GET("/stream/:id", func(c *gin.Context) {
		sessionID := c.Param("id")
		s, err := manager.Get(c.Request.Context(), sessionID)
		if err != nil || s == nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		req := Request{
			LogID:        sessionID,
			RedirectPath: "/session/" + sessionID,
			Topic:        sessionID,
			InitialFrame: s.CurrentFrame(),
		}
		params := ParamsFromQuery(c.Request.URL.Query())
		_ = engine.Serve(c, params,
			clientkind.FromHeaders(c.Request.Header),
			clientkind.EngineFromHeaders(c.Request.Header),
			req)
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, manager
}

func createSession(t *testing.T, manager *session.Manager, id, template string, args map[string]any) {
	t.Helper()
	err := manager.Save(context.Background(), id, session.New(template, args), time.Hour)
	require.NoError(t, err)
}

// openStream issues a bot-classified stream request and returns a reader
// positioned after the boundary opener.
func openStream(t *testing.T, ts *httptest.Server, path string) (*bufio.Reader, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Sec-Fetch-Dest", "image")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	reader := bufio.NewReader(resp.Body)
	opener, err := readExact(reader, len(BoundaryOpener()))
	require.NoError(t, err)
	require.Equal(t, string(BoundaryOpener()), opener)

	return reader, func() {
		resp.Body.Close()
		cancel()
	}
}

func readExact(r *bufio.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// readPart consumes one multipart part and returns its body.
func readPart(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "Content-Type: image/svg+xml\r\n", line)

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "Content-Length: "), "got %q", line)
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, "Content-Length: "), "\r\n"))
	require.NoError(t, err)

	blank, err := readExact(r, 2)
	require.NoError(t, err)
	require.Equal(t, "\r\n", blank)

	body, err := readExact(r, n)
	require.NoError(t, err)

	trailer, err := readExact(r, 2+len(BoundaryOpener()))
	require.NoError(t, err)
	require.Equal(t, "\r\n"+string(BoundaryOpener()), trailer)

	return body
}

func TestStreamInitialFrameFirst(t *testing.T) {
	ts, manager := newStreamServer(t)
	createSession(t, manager, "demo", "<svg>{{x}}</svg>", map[string]any{"x": "hi"})

	reader, done := openStream(t, ts, "/stream/demo")
	defer done()

	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
}

func TestStreamDeliversUpdatesInOrder(t *testing.T) {
	ts, manager := newStreamServer(t)
	createSession(t, manager, "demo", "<svg>{{x}}</svg>", map[string]any{"x": "0"})

	reader, done := openStream(t, ts, "/stream/demo")
	defer done()

	// Initial frame always comes first.
	assert.Equal(t, "<svg>0</svg>", readPart(t, reader))

	// N publishes produce exactly N further parts, in order.
	for i := 1; i <= 3; i++ {
		s := session.New("<svg>{{x}}</svg>", map[string]any{"x": fmt.Sprint(i)})
		require.NoError(t, manager.Save(context.Background(), "demo", s, time.Hour))
	}
	for i := 1; i <= 3; i++ {
		assert.Equal(t, fmt.Sprintf("<svg>%d</svg>", i), readPart(t, reader))
	}
}

func TestStreamDoubleFrameQueryOverride(t *testing.T) {
	ts, manager := newStreamServer(t)
	createSession(t, manager, "demo", "<svg>{{x}}</svg>", map[string]any{"x": "hi"})

	reader, done := openStream(t, ts, "/stream/demo?double_frame=true")
	defer done()

	// Every logical frame appears as two consecutive identical parts.
	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))

	s := session.New("<svg>{{x}}</svg>", map[string]any{"x": "ok"})
	require.NoError(t, manager.Save(context.Background(), "demo", s, time.Hour))
	assert.Equal(t, "<svg>ok</svg>", readPart(t, reader))
	assert.Equal(t, "<svg>ok</svg>", readPart(t, reader))
}

func TestStreamBlinkDoubleFrameDetection(t *testing.T) {
	ts, manager := newStreamServer(t)
	createSession(t, manager, "demo", "<svg>{{x}}</svg>", map[string]any{"x": "hi"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/stream/demo", nil)
	require.NoError(t, err)
	req.Header.Set("Sec-Fetch-Dest", "image")
	req.Header.Set("Sec-CH-UA", `"Chromium";v="120"`)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	opener, err := readExact(reader, len(BoundaryOpener()))
	require.NoError(t, err)
	require.Equal(t, string(BoundaryOpener()), opener)

	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
}

func TestStreamHumanRedirect(t *testing.T) {
	ts, manager := newStreamServer(t)
	createSession(t, manager, "demo", "<svg>{{x}}</svg>", map[string]any{"x": "hi"})

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/stream/demo", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/session/demo", resp.Header.Get("Location"))
}

func TestStreamHumanWithAsBotGetsStream(t *testing.T) {
	ts, manager := newStreamServer(t)
	createSession(t, manager, "demo", "<svg>{{x}}</svg>", map[string]any{"x": "hi"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/stream/demo?as_bot=true", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/html")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	opener, err := readExact(reader, len(BoundaryOpener()))
	require.NoError(t, err)
	require.Equal(t, string(BoundaryOpener()), opener)
	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
}

func TestStreamKeepAliveRepeatsLastFrame(t *testing.T) {
	ts, manager := newStreamServer(t)
	createSession(t, manager, "demo", "<svg>{{x}}</svg>", map[string]any{"x": "hi"})

	reader, done := openStream(t, ts, "/stream/demo?keep_alive=50")
	defer done()

	// Initial frame, then keep-alive re-emissions of the same frame.
	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
	assert.Equal(t, "<svg>hi</svg>", readPart(t, reader))
}

func TestStreamNotFound(t *testing.T) {
	ts, _ := newStreamServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/stream/absent", nil)
	require.NoError(t, err)
	req.Header.Set("Sec-Fetch-Dest", "image")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
