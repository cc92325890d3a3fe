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
	"sync"

	"golang.org/x/sync/errgroup"

	"agora/platform/debate/config"
	"agora/platform/shared/logger"
)

// ContextRouter selects the retrieval strategy for each collection from an
// explicit routing table. Routing is a pure function of the collection name:
// transactional collections use a bounded direct fetch, everything else goes
// through vector search with the debate topic as the query.
type ContextRouter struct {
	routes    map[string]config.CollectionConfig
	retriever Retriever
	vector    *VectorSearcher
	log       *logger.Logger
}

// NewContextRouter creates a router over the given routing table.
func NewContextRouter(routes map[string]config.CollectionConfig, retriever Retriever, vector *VectorSearcher) *ContextRouter {
	return &ContextRouter{
		routes:    routes,
		retriever: retriever,
		vector:    vector,
		log:       logger.New("context-router"),
	}
}

// Mode returns the retrieval mode for a collection, independent of topic or
// call history. Unknown collections fail with a ConfigurationError.
func (r *ContextRouter) Mode(collection string) (string, error) {
	route, ok := r.routes[collection]
	if !ok {
		return "", NewConfigurationError("unknown collection %q", collection)
	}
	return route.Mode, nil
}

// Retrieve fetches the documents for one collection using its configured
// strategy.
func (r *ContextRouter) Retrieve(ctx context.Context, requestID, topic, collection string) ([]Document, error) {
	route, ok := r.routes[collection]
	if !ok {
		return nil, NewConfigurationError("unknown collection %q", collection)
	}

	switch route.Mode {
	case config.ModeDirect:
		docs, err := r.retriever.FetchDirect(ctx, collection, route.Limit)
		if err != nil {
			return nil, NewRetrievalError(collection, wrapDeadline("direct fetch", err))
		}
		promRetrievalOps.WithLabelValues(collection, config.ModeDirect).Inc()
		r.log.Debug(requestID, "Direct fetch completed", map[string]interface{}{
			"collection": collection,
			"documents":  len(docs),
		})
		return docs, nil

	case config.ModeVector:
		docs, err := r.vector.Search(ctx, topic, collection, []string{route.Field})
		if err != nil {
			return nil, err
		}
		promRetrievalOps.WithLabelValues(collection, config.ModeVector).Inc()
		r.log.Debug(requestID, "Vector search completed", map[string]interface{}{
			"collection": collection,
			"documents":  len(docs),
		})
		return docs, nil

	default:
		return nil, NewConfigurationError("collection %q has unknown mode %q", collection, route.Mode)
	}
}

// CollectContext retrieves every collection in the scope concurrently and
// assembles the context bundle. Collections are independent, so a failure in
// any one aborts the whole collection step.
func (r *ContextRouter) CollectContext(ctx context.Context, requestID, topic string, scope []string) (ContextBundle, error) {
	// Validate the whole scope before issuing any retrieval call
	for _, collection := range scope {
		if _, ok := r.routes[collection]; !ok {
			return nil, NewConfigurationError("unknown collection %q", collection)
		}
	}

	bundle := make(ContextBundle, len(scope))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, collection := range scope {
		collection := collection
		g.Go(func() error {
			docs, err := r.Retrieve(gctx, requestID, topic, collection)
			if err != nil {
				return err
			}
			mu.Lock()
			bundle[collection] = docs
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return bundle, nil
}
