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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"agora/platform/debate/config"
	"agora/platform/shared/logger"
)

// FieldDocument pairs a document identifier with the value of one field.
type FieldDocument struct {
	ID    interface{}
	Value interface{}
}

// IngestStore is the write surface ingestion needs from the document store.
type IngestStore interface {
	InsertRecords(ctx context.Context, collection string, records []map[string]interface{}) (int, error)
	CreateVectorIndex(ctx context.Context, collection, indexName, path string, dimensions int) error
	FieldValues(ctx context.Context, collection, field string) ([]FieldDocument, error)
	SetField(ctx context.Context, collection string, id interface{}, field string, value interface{}) error
}

// Ingestor bulk-loads raw records per collection and, for each vector
// collection, creates the vector index and backfills an embedding per
// document. It runs out-of-band, before the first debate touches the index.
type Ingestor struct {
	store    IngestStore
	embedder Embedder
	cfg      *config.Config
	log      *logger.Logger
}

// NewIngestor creates an ingestor.
func NewIngestor(store IngestStore, embedder Embedder, cfg *config.Config) *Ingestor {
	return &Ingestor{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		log:      logger.New("ingestor"),
	}
}

// Run executes the full ingestion: seed files first, then indexes and
// embeddings. Progress lines are reported through the callback so the HTTP
// handler can stream them.
func (in *Ingestor) Run(ctx context.Context, progress func(string)) error {
	if err := in.loadSeedFiles(ctx, progress); err != nil {
		return err
	}
	if err := in.buildEmbeddings(ctx, progress); err != nil {
		return err
	}

	progress("All data loaded and embeddings created successfully!")
	return nil
}

// loadSeedFiles inserts every *.json file in the data directory into the
// collection named after the file.
func (in *Ingestor) loadSeedFiles(ctx context.Context, progress func(string)) error {
	entries, err := os.ReadDir(in.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to read data directory %s: %w", in.cfg.DataDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		collection := strings.TrimSuffix(entry.Name(), ".json")
		progress(fmt.Sprintf("Loading %s...", collection))

		data, err := os.ReadFile(filepath.Join(in.cfg.DataDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", entry.Name(), err)
		}

		var records []map[string]interface{}
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("seed file %s is not a JSON array: %w", entry.Name(), err)
		}

		count, err := in.store.InsertRecords(ctx, collection, records)
		if err != nil {
			return err
		}

		in.log.Info("", "Seed collection loaded", map[string]interface{}{
			"collection": collection,
			"records":    count,
		})
		progress(fmt.Sprintf("%s loaded successfully!", collection))
	}

	return nil
}

// buildEmbeddings creates the vector index for every vector collection and
// backfills the embedding field document by document.
func (in *Ingestor) buildEmbeddings(ctx context.Context, progress func(string)) error {
	progress("Generating embeddings...")

	targets := in.cfg.EmbeddingTargets()
	collections := make([]string, 0, len(targets))
	for collection := range targets {
		collections = append(collections, collection)
	}
	sort.Strings(collections)

	for _, collection := range collections {
		field := targets[collection]

		progress(fmt.Sprintf("Creating vector index for %s...", collection))
		if err := in.store.CreateVectorIndex(ctx, collection, in.cfg.Vector.IndexName, in.cfg.Vector.Path, in.cfg.Vector.Dimensions); err != nil {
			return err
		}

		docs, err := in.store.FieldValues(ctx, collection, field)
		if err != nil {
			return err
		}

		embedded := 0
		for _, doc := range docs {
			text, ok := doc.Value.(string)
			if !ok || text == "" {
				in.log.Warn("", "Skipping document without embeddable text", map[string]interface{}{
					"collection": collection,
					"field":      field,
					"id":         fmt.Sprintf("%v", doc.ID),
				})
				continue
			}

			vector, err := in.embedder.Embed(ctx, text)
			if err != nil {
				return NewRetrievalError(collection, wrapDeadline("embedding backfill", err))
			}

			if err := in.store.SetField(ctx, collection, doc.ID, in.cfg.Vector.Path, vector); err != nil {
				return err
			}
			embedded++
		}

		in.log.Info("", "Embeddings backfilled", map[string]interface{}{
			"collection": collection,
			"documents":  embedded,
		})
		progress(fmt.Sprintf("Vector index for %s created successfully!", collection))
	}

	return nil
}
