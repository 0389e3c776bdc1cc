package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/noteease/pkg/adapters/memory"
	"github.com/aretw0/noteease/pkg/bridge"
	"github.com/aretw0/noteease/pkg/core"
	"github.com/aretw0/noteease/pkg/storage"
)

var fixedNow = time.Date(2025, time.March, 4, 15, 30, 0, 0, time.UTC)

type testEnv struct {
	server *Server
	store  *core.Store
	http   *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	store := core.NewStore(storage.NewAdapter(memory.New(), storage.Config{}))
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	server, err := NewServer(store, opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		server.Close()
		ts.Close()
		_ = store.Close(context.Background())
	})

	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &testEnv{server: server, store: store, http: ts, client: client}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.http.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

// redirect issues a GET and returns the redirect target.
func (e *testEnv) redirect(t *testing.T, path string) string {
	t.Helper()
	resp, err := e.client.Get(e.http.URL + path)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	return resp.Header.Get("Location")
}

func (e *testEnv) dial(t *testing.T, editURL string) *gorilla.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(e.http.URL, "http") + editURL + "/ws"
	conn, resp, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func (e *testEnv) sessionCount() int {
	e.server.mu.Lock()
	defer e.server.mu.Unlock()
	return len(e.server.sessions)
}

func (e *testEnv) editors(id string) int {
	e.server.mu.Lock()
	defer e.server.mu.Unlock()
	es, ok := e.server.sessions[id]
	if !ok {
		return -1
	}
	return es.editors
}

func (e *testEnv) snapshot(id string) string {
	e.server.mu.Lock()
	es, ok := e.server.sessions[id]
	e.server.mu.Unlock()
	if !ok {
		return ""
	}
	_, content := es.session.Snapshot()
	return content
}

func readMessage(t *testing.T, conn *gorilla.Conn) bridge.Message {
	t.Helper()
	var m bridge.Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestList_EmptyState(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "No notes yet. Create your first note!")
}

func TestCreate_ThenList(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/notes", url.Values{"title": {"  Groceries "}, "content": {"<p>milk</p>"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	env.post(t, "/notes", url.Values{"title": {""}, "content": {"<p>untitled body</p>"}})

	notes := env.store.List()
	require.Len(t, notes, 2)
	assert.Equal(t, "Groceries", notes[1].Title)
	assert.Equal(t, "March 4, 2025", notes[1].Date)

	_, body := env.get(t, "/")
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "Untitled Note")
	assert.NotContains(t, body, "No notes yet")
	assert.Less(t, strings.Index(body, "Untitled Note"), strings.Index(body, "Groceries"), "newest first")
}

func TestCreate_BlankIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	resp := env.post(t, "/notes", url.Values{"title": {""}, "content": {""}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.store.List())
}

func TestDetail(t *testing.T) {
	env := newTestEnv(t)
	env.store.Create(core.Note{ID: "1", Title: "Groceries", Content: "<p><b>milk</b><script>alert(1)</script></p>", Date: "March 4, 2025"})

	status, body := env.get(t, "/notes/1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<b>milk</b>")
	assert.NotContains(t, body, "alert(1)")
	assert.Contains(t, body, "March 4, 2025")

	status, body = env.get(t, "/notes/404")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Note not found.")
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	env.store.Create(core.Note{ID: "1", Title: "Groceries"})

	resp := env.post(t, "/notes/1/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, env.store.List())

	// Deleting again is harmless.
	resp = env.post(t, "/notes/1/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestEdit_RoundTripOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	env.store.Create(core.Note{ID: "1", Title: "Groceries", Content: "<p>milk</p>", Date: "March 4, 2025"})

	resp := env.post(t, "/notes/1/edit", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	editURL := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(editURL, "/edit/"))
	sessionID := strings.TrimPrefix(editURL, "/edit/")

	status, body := env.get(t, editURL)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `value="Groceries"`)

	conn := env.dial(t, editURL)
	assert.Equal(t, bridge.SetContent("<p>milk</p>"), readMessage(t, conn))

	formatResp := env.post(t, editURL+"/format", url.Values{"command": {"bold"}})
	assert.Equal(t, http.StatusNoContent, formatResp.StatusCode)
	assert.Equal(t, bridge.Format(bridge.Bold), readMessage(t, conn))

	badResp := env.post(t, editURL+"/format", url.Values{"command": {"strike"}})
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)

	require.NoError(t, conn.WriteJSON(bridge.ContentChanged("<p><b>milk</b>, eggs</p>")))
	require.Eventually(t, func() bool {
		return env.snapshot(sessionID) == "<p><b>milk</b>, eggs</p>"
	}, 2*time.Second, 5*time.Millisecond)

	saveResp := env.post(t, editURL+"/save", url.Values{"title": {" Weekly groceries "}})
	assert.Equal(t, http.StatusSeeOther, saveResp.StatusCode)
	assert.Equal(t, "/notes/1", saveResp.Header.Get("Location"))

	got, err := env.store.Get("1")
	require.NoError(t, err)
	assert.Equal(t, core.Note{ID: "1", Title: "Weekly groceries", Content: "<p><b>milk</b>, eggs</p>", Date: "March 4, 2025"}, got)

	status, _ = env.get(t, editURL)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEdit_CancelDiscards(t *testing.T) {
	env := newTestEnv(t)
	original := core.Note{ID: "1", Title: "Groceries", Content: "<p>milk</p>", Date: "March 4, 2025"}
	env.store.Create(original)

	resp := env.post(t, "/notes/1/edit", nil)
	editURL := resp.Header.Get("Location")

	resp = env.post(t, editURL+"/cancel", url.Values{"title": {"changed"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	got, err := env.store.Get("1")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestEdit_UnknownNoteOrSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/notes/404/edit", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	status, body := env.get(t, "/edit/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Editing session not found.")
}

func TestEdit_ReconnectGetsPendingContent(t *testing.T) {
	env := newTestEnv(t)
	env.store.Create(core.Note{ID: "1", Title: "Groceries", Content: "<p>milk</p>", Date: "March 4, 2025"})

	editURL := env.post(t, "/notes/1/edit", nil).Header.Get("Location")
	sessionID := strings.TrimPrefix(editURL, "/edit/")

	first := env.dial(t, editURL)
	assert.Equal(t, bridge.SetContent("<p>milk</p>"), readMessage(t, first))
	require.NoError(t, first.WriteJSON(bridge.ContentChanged("<p>milk, eggs</p>")))
	require.Eventually(t, func() bool {
		return env.snapshot(sessionID) == "<p>milk, eggs</p>"
	}, 2*time.Second, 5*time.Millisecond)

	// Page reload: the old editor goes away before the new one connects.
	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return env.editors(sessionID) == 0 }, 2*time.Second, 5*time.Millisecond)

	second := env.dial(t, editURL)
	assert.Equal(t, bridge.SetContent("<p>milk, eggs</p>"), readMessage(t, second))

	env.post(t, editURL+"/save", url.Values{"title": {"Groceries"}})
	got, err := env.store.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "<p>milk, eggs</p>", got.Content)
}

func TestEdit_SessionDiscardedAfterEditorLeaves(t *testing.T) {
	env := newTestEnv(t, WithDetachGrace(250*time.Millisecond))
	original := core.Note{ID: "1", Title: "Groceries", Content: "<p>milk</p>", Date: "March 4, 2025"}
	env.store.Create(original)

	var editURL string
	for range 3 {
		editURL = env.post(t, "/notes/1/edit", nil).Header.Get("Location")
	}
	conn := env.dial(t, editURL)
	readMessage(t, conn)
	require.NoError(t, conn.WriteJSON(bridge.ContentChanged("<p>never saved</p>")))

	// Sessions nobody connected to go away; the connected one stays.
	require.Eventually(t, func() bool { return env.sessionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return env.sessionCount() == 0 }, 500*time.Millisecond, 20*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return env.sessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	got, err := env.store.Get("1")
	require.NoError(t, err)
	assert.Equal(t, original, got)

	status, _ := env.get(t, editURL)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreate_WithEditor(t *testing.T) {
	env := newTestEnv(t)

	editURL := env.redirect(t, "/notes/new")
	require.True(t, strings.HasPrefix(editURL, "/edit/"))
	sessionID := strings.TrimPrefix(editURL, "/edit/")

	status, body := env.get(t, editURL)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "New note")
	assert.Contains(t, body, `contenteditable="true"`)
	assert.Contains(t, body, `data-command="underline"`)

	conn := env.dial(t, editURL)
	assert.Equal(t, bridge.SetContent(""), readMessage(t, conn))

	formatResp := env.post(t, editURL+"/format", url.Values{"command": {"italic"}})
	assert.Equal(t, http.StatusNoContent, formatResp.StatusCode)
	assert.Equal(t, bridge.Format(bridge.Italic), readMessage(t, conn))

	require.NoError(t, conn.WriteJSON(bridge.ContentChanged("<p><i>milk</i></p>")))
	require.Eventually(t, func() bool {
		return env.snapshot(sessionID) == "<p><i>milk</i></p>"
	}, 2*time.Second, 5*time.Millisecond)

	resp := env.post(t, editURL+"/save", url.Values{"title": {" Groceries "}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	assert.Equal(t, []core.Note{{
		ID:      "1741102200000",
		Title:   "Groceries",
		Content: "<p><i>milk</i></p>",
		Date:    "March 4, 2025",
	}}, env.store.List())
	assert.Zero(t, env.sessionCount())
}

func TestCreate_EmptyDraftIsDropped(t *testing.T) {
	env := newTestEnv(t)

	editURL := env.redirect(t, "/notes/new")
	resp := env.post(t, editURL+"/save", url.Values{"title": {""}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Empty(t, env.store.List())

	editURL = env.redirect(t, "/notes/new")
	resp = env.post(t, editURL+"/cancel", nil)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Empty(t, env.store.List())
	assert.Zero(t, env.sessionCount())
}
