package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaeval/internal/gateway/session"
	"ideaeval/internal/llmclient"
	"ideaeval/internal/orchestrator"
)

var quiet = log.New(io.Discard, "", 0)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type snapshotJSON struct {
	State  string `json:"state"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
	Result *struct {
		BusinessName string  `json:"businessName"`
		SuccessRate  float64 `json:"successRate"`
	} `json:"result"`
	Image *struct {
		MIMEType string `json:"mimeType"`
		DataURL  string `json:"dataUrl"`
	} `json:"image"`
	RiskChart []struct {
		Key      string `json:"key"`
		FullMark int    `json:"fullMark"`
	} `json:"riskChart"`
}

type viewJSON struct {
	SessionID string       `json:"sessionId"`
	Accepted  bool         `json:"accepted"`
	Reason    string       `json:"reason"`
	Reset     bool         `json:"reset"`
	Snapshot  snapshotJSON `json:"snapshot"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := session.New(8, time.Minute, func(id string) (*orchestrator.Orchestrator, error) {
		return orchestrator.New(orchestrator.Config{ID: id, Generator: llmclient.NewFakeClient(), Logger: quiet})
	}, quiet)
	t.Cleanup(store.Close)

	r := chi.NewRouter()
	New(store, quiet).Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url, body string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeView(t *testing.T, env envelope) viewJSON {
	t.Helper()
	var v viewJSON
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func createSession(t *testing.T, base string) string {
	t.Helper()
	status, env := call(t, http.MethodPost, base+"/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, status)
	v := decodeView(t, env)
	require.NotEmpty(t, v.SessionID)
	assert.Equal(t, "idle", v.Snapshot.State)
	return v.SessionID
}

func waitForState(t *testing.T, base, id, want string) viewJSON {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, env := call(t, http.MethodGet, base+"/api/v1/sessions/"+id, "")
		v := decodeView(t, env)
		if v.Snapshot.State == want {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("session %s never reached %s (now %s)", id, want, v.Snapshot.State)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	status, env := call(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv.URL)
	base := srv.URL + "/api/v1/sessions/" + id

	status, env := call(t, http.MethodPost, base+"/submit", `{"idea":"A subscription box for rare houseplants"}`)
	require.Equal(t, http.StatusAccepted, status)
	v := decodeView(t, env)
	assert.True(t, v.Accepted)
	assert.Equal(t, "running", v.Snapshot.State)

	v = waitForState(t, srv.URL, id, "succeeded")
	require.NotNil(t, v.Snapshot.Result)
	assert.Equal(t, "A Subscription Box Co.", v.Snapshot.Result.BusinessName)
	require.NotNil(t, v.Snapshot.Image)
	assert.True(t, strings.HasPrefix(v.Snapshot.Image.DataURL, "data:image/png;base64,"))
	require.Len(t, v.Snapshot.RiskChart, 4)
	assert.Equal(t, "market", v.Snapshot.RiskChart[0].Key)
	assert.Equal(t, 10, v.Snapshot.RiskChart[3].FullMark)

	resp, err := http.Get(base + "/image")
	require.NoError(t, err)
	img, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	status, env = call(t, http.MethodPost, base+"/submit", `{"idea":"another"}`)
	assert.Equal(t, http.StatusOK, status)
	v = decodeView(t, env)
	assert.False(t, v.Accepted)
	assert.Equal(t, "reset_required", v.Reason)

	status, env = call(t, http.MethodPost, base+"/reset", "")
	assert.Equal(t, http.StatusOK, status)
	v = decodeView(t, env)
	assert.True(t, v.Reset)
	assert.Equal(t, "idle", v.Snapshot.State)
	assert.Nil(t, v.Snapshot.Result)
	assert.Nil(t, v.Snapshot.Image)

	status, env = call(t, http.MethodGet, base+"/image", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "no_image", env.Error.Code)
}

func TestSubmit_Rejections(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv.URL)
	base := srv.URL + "/api/v1/sessions/" + id

	status, env := call(t, http.MethodPost, base+"/submit", `{"idea":"   "}`)
	assert.Equal(t, http.StatusOK, status)
	v := decodeView(t, env)
	assert.False(t, v.Accepted)
	assert.Equal(t, "empty_input", v.Reason)
	assert.Equal(t, "idle", v.Snapshot.State)

	status, env = call(t, http.MethodPost, base+"/submit", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", env.Error.Code)

	status, env = call(t, http.MethodPost, base+"/reset", "")
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, decodeView(t, env).Reset)
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/api/v1/sessions/nope", "/api/v1/sessions/nope/image"} {
		status, env := call(t, http.MethodGet, srv.URL+path, "")
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "session_not_found", env.Error.Code, path)
	}
}

func TestSessionWS(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv.URL)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + id + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	type outbound struct {
		Type     string        `json:"type"`
		Snapshot *snapshotJSON `json:"snapshot"`
		Accepted *bool         `json:"accepted"`
		Reason   string        `json:"reason"`
		Code     string        `json:"code"`
	}
	read := func() outbound {
		var out outbound
		require.NoError(t, conn.ReadJSON(&out))
		return out
	}

	first := read()
	require.Equal(t, "snapshot", first.Type)
	assert.Equal(t, "idle", first.Snapshot.State)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", read().Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))
	assert.Equal(t, "invalid_argument", read().Code)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "submit", "idea": "a mobile bakery"}))
	var sawAck, sawSucceeded bool
	for !sawAck || !sawSucceeded {
		out := read()
		switch out.Type {
		case "submit_ack":
			require.NotNil(t, out.Accepted)
			assert.True(t, *out.Accepted)
			sawAck = true
		case "snapshot":
			if out.Snapshot.State == "succeeded" {
				assert.NotNil(t, out.Snapshot.Result)
				sawSucceeded = true
			}
		}
	}

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "reset"}))
	var sawReset bool
	for !sawReset {
		out := read()
		if out.Type == "reset_ack" {
			require.NotNil(t, out.Accepted)
			assert.True(t, *out.Accepted)
			sawReset = true
		}
	}
}
