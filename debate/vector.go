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
	"crypto/sha256"
	"encoding/hex"
	"time"

	"agora/platform/debate/config"
	"agora/platform/shared/logger"
	"agora/platform/store/cache"
)

// VectorSearcher embeds a query and runs an approximate nearest-neighbor
// lookup against a pre-built embedding index. The index is created
// out-of-band by ingestion; searching a collection that was never indexed
// fails as a RetrievalError.
//
// Nearest-neighbor ties are broken by the underlying index and the ordering
// among equal-similarity results is not guaranteed stable.
type VectorSearcher struct {
	embedder  Embedder
	retriever Retriever
	params    config.VectorConfig
	cache     *cache.Cache // optional query-embedding cache
	cacheTTL  time.Duration
	log       *logger.Logger
}

// NewVectorSearcher creates a vector searcher. cache may be nil, in which
// case every search embeds the query.
func NewVectorSearcher(embedder Embedder, retriever Retriever, params config.VectorConfig, c *cache.Cache, cacheTTL time.Duration) *VectorSearcher {
	return &VectorSearcher{
		embedder:  embedder,
		retriever: retriever,
		params:    params,
		cache:     c,
		cacheTTL:  cacheTTL,
		log:       logger.New("vector-search"),
	}
}

// Search embeds the query and returns at most topK documents from the
// collection, projected to the given fields.
func (v *VectorSearcher) Search(ctx context.Context, query, collection string, fields []string) ([]Document, error) {
	vector, err := v.embedQuery(ctx, query)
	if err != nil {
		return nil, NewRetrievalError(collection, wrapDeadline("embedding", err))
	}

	docs, err := v.retriever.FetchByVector(ctx, collection, vector, v.params.CandidatePool, v.params.TopK, fields)
	if err != nil {
		return nil, NewRetrievalError(collection, wrapDeadline("vector search", err))
	}

	return docs, nil
}

// embedQuery returns the query embedding, consulting the cache first.
// Cache failures are logged and ignored: the cache is best-effort.
func (v *VectorSearcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := embeddingCacheKey(query)

	if v.cache != nil {
		var vector []float32
		err := v.cache.GetJSON(ctx, key, &vector)
		if err == nil && len(vector) == v.params.Dimensions {
			return vector, nil
		}
		if err != nil && err != cache.ErrMiss {
			v.log.Warn("", "Embedding cache read failed", map[string]interface{}{"error": err.Error()})
		}
	}

	vector, err := v.embedder.Embed(ctx, query)
	if err != nil {
		promLLMCalls.WithLabelValues("embedding", "error").Inc()
		return nil, err
	}
	promLLMCalls.WithLabelValues("embedding", "success").Inc()

	if v.cache != nil {
		if err := v.cache.SetJSON(ctx, key, vector, v.cacheTTL); err != nil {
			v.log.Warn("", "Embedding cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return vector, nil
}

// embeddingCacheKey hashes the query so arbitrary topic text maps to a
// bounded Redis key.
func embeddingCacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "qembed:" + hex.EncodeToString(sum[:])
}
