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
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/platform/debate/config"
)

type fieldWrite struct {
	collection string
	id         interface{}
	field      string
	value      interface{}
}

type fakeIngestStore struct {
	mu          sync.Mutex
	inserts     map[string][]map[string]interface{}
	indexes     []string
	fieldDocs   map[string][]FieldDocument
	fieldWrites []fieldWrite
}

func newFakeIngestStore() *fakeIngestStore {
	return &fakeIngestStore{
		inserts:   make(map[string][]map[string]interface{}),
		fieldDocs: make(map[string][]FieldDocument),
	}
}

func (f *fakeIngestStore) InsertRecords(ctx context.Context, collection string, records []map[string]interface{}) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts[collection] = records
	return len(records), nil
}

func (f *fakeIngestStore) CreateVectorIndex(ctx context.Context, collection, indexName, path string, dimensions int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexes = append(f.indexes, collection)
	return nil
}

func (f *fakeIngestStore) FieldValues(ctx context.Context, collection, field string) ([]FieldDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldDocs[collection], nil
}

func (f *fakeIngestStore) SetField(ctx context.Context, collection string, id interface{}, field string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldWrites = append(f.fieldWrites, fieldWrite{collection: collection, id: id, field: field, value: value})
	return nil
}

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func ingestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestIngestorRun(t *testing.T) {
	cfg := ingestConfig(t)
	writeSeedFile(t, cfg.DataDir, "sales_data.json", `[{"region":"EMEA","revenue":120000}]`)
	writeSeedFile(t, cfg.DataDir, "customer_feedback.json", `[{"feedback":"great"},{"feedback":"slow"}]`)
	writeSeedFile(t, cfg.DataDir, "notes.txt", "not a seed file")

	store := newFakeIngestStore()
	store.fieldDocs["customer_feedback"] = []FieldDocument{
		{ID: "a", Value: "great"},
		{ID: "b", Value: "slow"},
	}

	embedder := &fakeEmbedder{vector: []float32{0.5, 0.5, 0.5, 0.5}}
	ingestor := NewIngestor(store, embedder, cfg)

	var lines []string
	err := ingestor.Run(context.Background(), func(line string) { lines = append(lines, line) })
	require.NoError(t, err)

	// Only .json files are loaded, into collections named after the file
	assert.Len(t, store.inserts["sales_data"], 1)
	assert.Len(t, store.inserts["customer_feedback"], 2)
	assert.NotContains(t, store.inserts, "notes")

	// Every vector collection gets its index
	assert.Contains(t, store.indexes, "customer_feedback")
	assert.Contains(t, store.indexes, "performance_logs")

	// Each feedback document gets an embedding backfilled
	require.Len(t, store.fieldWrites, 2)
	assert.Equal(t, "customer_feedback", store.fieldWrites[0].collection)
	assert.Equal(t, "embedding", store.fieldWrites[0].field)
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, store.fieldWrites[0].value)

	// The embedder saw the document text, not the topic
	assert.ElementsMatch(t, []string{"great", "slow"}, embedder.calls)

	assert.Contains(t, lines, "sales_data loaded successfully!")
	assert.Contains(t, lines, "All data loaded and embeddings created successfully!")
}

func TestIngestorSkipsDocumentsWithoutText(t *testing.T) {
	cfg := ingestConfig(t)

	store := newFakeIngestStore()
	store.fieldDocs["customer_feedback"] = []FieldDocument{
		{ID: "a", Value: "usable text"},
		{ID: "b", Value: 42},
		{ID: "c", Value: ""},
	}

	embedder := &fakeEmbedder{vector: []float32{1, 1, 1, 1}}
	ingestor := NewIngestor(store, embedder, cfg)

	err := ingestor.Run(context.Background(), func(string) {})
	require.NoError(t, err)

	require.Len(t, store.fieldWrites, 1)
	assert.Equal(t, "a", store.fieldWrites[0].id)
}

func TestIngestorMalformedSeedFile(t *testing.T) {
	cfg := ingestConfig(t)
	writeSeedFile(t, cfg.DataDir, "sales_data.json", `{"not":"an array"}`)

	ingestor := NewIngestor(newFakeIngestStore(), &fakeEmbedder{}, cfg)

	err := ingestor.Run(context.Background(), func(string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON array")
}

func TestIngestorMissingDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "does-not-exist")

	ingestor := NewIngestor(newFakeIngestStore(), &fakeEmbedder{}, cfg)

	err := ingestor.Run(context.Background(), func(string) {})
	require.Error(t, err)
}
