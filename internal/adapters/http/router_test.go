package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	router "github.com/castlab/relaygate/internal/adapters/http"
	"github.com/castlab/relaygate/internal/app"
	"github.com/castlab/relaygate/internal/app/orch"
	"github.com/castlab/relaygate/internal/config"
	"github.com/castlab/relaygate/internal/core/coretest"
)

const broadcastOffer = "v=0\r\n" +
	"o=- 4611731400430051336 2 IN IP4 127.0.0.1\r\n" +
	"s=-\r\n" +
	"t=0 0\r\n" +
	"a=group:BUNDLE 0\r\n" +
	"a=msid-semantic: WMS stream0\r\n" +
	"m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=ice-ufrag:EsAw\r\n" +
	"a=ice-pwd:P2uYro0UCOQ4zxjKXaWCBui1\r\n" +
	"a=fingerprint:sha-256 D2:FA:0E:C3:22:59:5E:14:95:69:92:3D:13:B4:84:24:2C:C2:A2:C0:3E:FD:34:8E:5E:EA:6F:AF:52:CE:E6:0F\r\n" +
	"a=setup:actpass\r\n" +
	"a=mid:0\r\n" +
	"a=sendonly\r\n" +
	"a=msid:stream0 track0\r\n" +
	"a=rtpmap:96 VP8/90000\r\n" +
	"a=ssrc:1111 cname:stream0\r\n" +
	"a=ssrc:1111 msid:stream0 track0\r\n"

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	o := &orch.Orchestrator{
		Engine:   coretest.NewEngine(),
		Registry: app.NewRegistry(),
		Caps:     orch.DefaultCapabilities(),
	}
	return router.SetupRouter(&config.Config{Mode: "test"}, o)
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBroadcastSourceAndSink(t *testing.T) {
	r := newTestRouter()

	w := postJSON(t, r, "/source", gin.H{"offer": broadcastOffer})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pub struct {
		SessionID string `json:"session_id"`
		Answer    string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	assert.Len(t, pub.SessionID, 32)
	assert.NotEmpty(t, pub.Answer)

	w = postJSON(t, r, fmt.Sprintf("/sessions/%s/sink", pub.SessionID), gin.H{"offer": broadcastOffer})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sink struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sink))
	assert.NotEmpty(t, sink.Answer)
}

func TestSinkUnknownSession(t *testing.T) {
	r := newTestRouter()

	w := postJSON(t, r, "/sessions/00000000000000000000000000000000/sink", gin.H{"offer": broadcastOffer})
	require.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Message string `json:"message"`
		Stack   string `json:"stack"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.NotEmpty(t, body.Stack)
}

func TestSourceRejectsMissingOffer(t *testing.T) {
	r := newTestRouter()

	w := postJSON(t, r, "/source", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, "/simulcast/source", gin.H{"offer": 42})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulcastSinkRequiresSelector(t *testing.T) {
	r := newTestRouter()

	w := postJSON(t, r, "/simulcast/sessions/00000000000000000000000000000000/sink", gin.H{"offer": broadcastOffer})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulcastSourceRejectsPlainOffer(t *testing.T) {
	r := newTestRouter()

	// broadcast-style offer carries no simulcast declaration
	w := postJSON(t, r, "/simulcast/source", gin.H{"offer": broadcastOffer})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
