// Copyright 2025 Agora Labs
// SPDX-License-Identifier: BUSL-1.1
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package debate

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/platform/debate/config"
)

func newTestServer(t *testing.T, f *engineFixture) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	ingestor := NewIngestor(newFakeIngestStore(), f.embedder, cfg)
	return NewServer(f.engine, ingestor, cfg, f.metrics)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleDebate(t *testing.T) {
	server := newTestServer(t, newEngineFixture())

	body := `{
		"topic": "Should we expand to APAC?",
		"agents": {"Nova": "model-nova", "Zeta": "model-zeta"},
		"context_scope": ["sales_data", "customer_feedback"],
		"aggregator_model": "moderator-model"
	}`
	req := httptest.NewRequest(http.MethodPost, "/debate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(server, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result DebateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Should we expand to APAC?", result.Topic)
	assert.Equal(t, []string{"Nova", "Zeta"}, result.Agents)
	assert.Len(t, result.Responses, 2)
	assert.NotEmpty(t, result.Summary)
}

func TestHandleDebateFailure(t *testing.T) {
	f := newEngineFixture()
	f.retriever.directErr = errors.New("connection refused")
	server := newTestServer(t, f)

	body := `{
		"topic": "Should we expand to APAC?",
		"agents": {"Nova": "model-nova"},
		"context_scope": ["sales_data"],
		"aggregator_model": "moderator-model"
	}`
	req := httptest.NewRequest(http.MethodPost, "/debate", strings.NewReader(body))

	rec := serve(server, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResult ErrorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResult))
	assert.Contains(t, errResult.Error, "retrieval error")
	assert.Contains(t, errResult.Trace, "state=CollectingContext")
}

func TestHandleDebateMalformedBody(t *testing.T) {
	server := newTestServer(t, newEngineFixture())

	req := httptest.NewRequest(http.MethodPost, "/debate", strings.NewReader("{not json"))
	rec := serve(server, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResult ErrorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResult))
	assert.Contains(t, errResult.Error, "invalid request body")
}

func TestHandleLoadData(t *testing.T) {
	server := newTestServer(t, newEngineFixture())

	req := httptest.NewRequest(http.MethodGet, "/load_data", nil)
	rec := serve(server, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "All data loaded and embeddings created successfully!")
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, newEngineFixture())

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, rec.Body.String())
}

func TestHandleMetrics(t *testing.T) {
	f := newEngineFixture()
	server := newTestServer(t, f)

	// Run one debate so the counters move
	body := `{
		"topic": "topic",
		"agents": {"Nova": "model-nova"},
		"context_scope": ["sales_data"],
		"aggregator_model": "moderator-model"
	}`
	rec := serve(server, httptest.NewRequest(http.MethodPost, "/debate", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.EqualValues(t, 1, snapshot["total_debates"])
	assert.EqualValues(t, 1, snapshot["success_debates"])
}

func TestHandlePrometheus(t *testing.T) {
	server := newTestServer(t, newEngineFixture())

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/prometheus", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t, newEngineFixture())

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/debate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
