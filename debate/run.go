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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/platform/debate/config"
	"agora/platform/llm"
	"agora/platform/llm/together"
	"agora/platform/shared/logger"
	"agora/platform/store/cache"
	"agora/platform/store/mongo"
)

// Run wires the engine from configuration and serves HTTP until SIGINT or
// SIGTERM. It is the single composition point: everything above it depends
// on interfaces, everything below it is concrete.
func Run() error {
	log := logger.New("engine")

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.MongoURI,
		Database: cfg.Database,
		AppName:  "agora-engine",
	})
	if err != nil {
		return fmt.Errorf("failed to connect to document store: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := store.Disconnect(shutdownCtx); err != nil {
			log.Warn("", "Document store disconnect failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// The cache is optional. A missing or unreachable Redis degrades to
	// uncached operation rather than refusing to start.
	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err = cache.Connect(ctx, cache.Config{URL: cfg.RedisURL})
		if err != nil {
			log.Warn("", "Cache unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	provider, err := together.NewProvider(together.Config{
		APIKey:         cfg.Provider.APIKey,
		BaseURL:        cfg.Provider.BaseURL,
		EmbeddingModel: cfg.Provider.EmbeddingModel,
		Timeout:        cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	retriever := &mongoRetriever{store: store, vector: cfg.Vector}
	embedder := &providerEmbedder{provider: provider}
	generator := &providerGenerator{provider: provider}

	vectorSearcher := NewVectorSearcher(embedder, retriever, cfg.Vector, redisCache, cfg.EmbedCacheTTL)
	router := NewContextRouter(cfg.Collections, retriever, vectorSearcher)
	personas := NewCachedPersonaSource(&storePersonaSource{store: store}, redisCache, cfg.PersonaCacheTTL)
	invoker := NewAgentInvoker(generator)
	aggregator := NewDebateAggregator(generator)

	metrics := NewEngineMetrics()
	engine := NewEngine(router, personas, invoker, aggregator, PromptOptions{
		PreviewDocs: cfg.Prompt.PreviewDocs,
		WordLimit:   cfg.Prompt.WordLimit,
	}, metrics)

	ingestor := NewIngestor(&ingestStoreAdapter{store: store}, embedder, cfg)
	server := NewServer(engine, ingestor, cfg, metrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("", "Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// mongoRetriever adapts the document store to the Retriever interface,
// carrying the index name and embedding path so callers only deal in
// collections and vectors.
type mongoRetriever struct {
	store  *mongo.Store
	vector config.VectorConfig
}

func (m *mongoRetriever) FetchDirect(ctx context.Context, collection string, limit int) ([]Document, error) {
	return m.store.FetchDirect(ctx, collection, limit)
}

func (m *mongoRetriever) FetchByVector(ctx context.Context, collection string, vector []float32, candidatePool, topK int, fields []string) ([]Document, error) {
	return m.store.FetchByVector(ctx, mongo.VectorQuery{
		Collection:    collection,
		Vector:        vector,
		IndexName:     m.vector.IndexName,
		Path:          m.vector.Path,
		CandidatePool: candidatePool,
		TopK:          topK,
		Fields:        fields,
	})
}

// providerEmbedder adapts an llm.Provider to the Embedder interface.
type providerEmbedder struct {
	provider llm.Provider
}

func (p *providerEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.provider.Embed(ctx, llm.EmbeddingRequest{Input: text})
}

// providerGenerator adapts an llm.Provider to the Generator interface.
type providerGenerator struct {
	provider llm.Provider
}

func (p *providerGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model:  model,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// storePersonaSource resolves personas from the agents collection.
type storePersonaSource struct {
	store *mongo.Store
}

func (s *storePersonaSource) GetPersona(ctx context.Context, name string) (*PersonaConfig, error) {
	doc, err := s.store.GetPersona(ctx, name)
	if errors.Is(err, mongo.ErrNotFound) {
		return nil, fmt.Errorf("persona %q: %w", name, ErrPersonaNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &PersonaConfig{
		Name:        stringField(doc, "name"),
		Role:        stringField(doc, "role"),
		Description: stringField(doc, "description"),
	}, nil
}

func stringField(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

// ingestStoreAdapter adapts the document store to the IngestStore interface.
type ingestStoreAdapter struct {
	store *mongo.Store
}

func (a *ingestStoreAdapter) InsertRecords(ctx context.Context, collection string, records []map[string]interface{}) (int, error) {
	return a.store.InsertRecords(ctx, collection, records)
}

func (a *ingestStoreAdapter) CreateVectorIndex(ctx context.Context, collection, indexName, path string, dimensions int) error {
	return a.store.CreateVectorIndex(ctx, collection, indexName, path, dimensions)
}

func (a *ingestStoreAdapter) FieldValues(ctx context.Context, collection, field string) ([]FieldDocument, error) {
	docs, err := a.store.FieldValues(ctx, collection, field)
	if err != nil {
		return nil, err
	}
	out := make([]FieldDocument, len(docs))
	for i, d := range docs {
		out[i] = FieldDocument{ID: d.ID, Value: d.Value}
	}
	return out, nil
}

func (a *ingestStoreAdapter) SetField(ctx context.Context, collection string, id interface{}, field string, value interface{}) error {
	return a.store.SetField(ctx, collection, id, field, value)
}
