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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"agora/platform/debate/config"
	"agora/platform/shared/logger"
)

// Server exposes the debate engine over HTTP.
type Server struct {
	engine   *Engine
	ingestor *Ingestor
	cfg      *config.Config
	metrics  *EngineMetrics
	log      *logger.Logger
	httpSrv  *http.Server
}

// NewServer creates the HTTP surface for an engine.
func NewServer(engine *Engine, ingestor *Ingestor, cfg *config.Config, metrics *EngineMetrics) *Server {
	s := &Server{
		engine:   engine,
		ingestor: ingestor,
		cfg:      cfg,
		metrics:  metrics,
		log:      logger.New("server"),
	}

	router := mux.NewRouter()
	router.HandleFunc("/debate", s.handleDebate).Methods("POST")
	router.HandleFunc("/load_data", s.handleLoadData).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	router.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.log.Info("", "HTTP server starting", map[string]interface{}{
		"addr": s.httpSrv.Addr,
	})
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("", "HTTP server shutting down", nil)
	return s.httpSrv.Shutdown(ctx)
}

// handleDebate runs one debate end to end. Success returns the result
// envelope with HTTP 200; any failure returns the error envelope with
// HTTP 500.
func (s *Server) handleDebate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	start := time.Now()

	var req DebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn(requestID, "Malformed debate request body", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, &ErrorResult{
			Error: "invalid request body: " + err.Error(),
			Trace: "state=decoding\ninvalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result, errResult := s.engine.Orchestrate(ctx, requestID, req)
	if errResult != nil {
		s.log.Error(requestID, "Debate failed", map[string]interface{}{
			"topic":       req.Topic,
			"error":       errResult.Error,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		writeJSON(w, http.StatusInternalServerError, errResult)
		return
	}

	s.log.InfoWithDuration(requestID, "Debate completed", float64(time.Since(start).Milliseconds()), map[string]interface{}{
		"topic":  req.Topic,
		"agents": len(result.Agents),
	})
	writeJSON(w, http.StatusOK, result)
}

// handleLoadData runs ingestion and streams progress lines as they happen.
func (s *Server) handleLoadData(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	progress := func(line string) {
		fmt.Fprintln(w, line)
		if canFlush {
			flusher.Flush()
		}
	}

	if err := s.ingestor.Run(r.Context(), progress); err != nil {
		s.log.ErrorWithCause(requestID, "Data load failed", err, nil)
		progress("Error: " + err.Error())
		return
	}

	s.log.Info(requestID, "Data load completed", nil)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleMetrics reports engine counters as JSON. The prometheus exposition
// format lives at /prometheus.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
