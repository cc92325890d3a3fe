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

// Package mongo implements the debate engine's document store on MongoDB.
// It provides direct context retrieval, approximate nearest-neighbor lookup
// over Atlas vector search indexes, persona configuration reads, and the
// write operations used by offline ingestion.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"agora/platform/shared/logger"
)

const (
	// DefaultTimeout is the default operation timeout
	DefaultTimeout = 30 * time.Second
	// DefaultConnectTimeout is the default connection timeout
	DefaultConnectTimeout = 10 * time.Second
	// DefaultMaxPoolSize is the default maximum connection pool size
	DefaultMaxPoolSize = 100
	// DefaultMinPoolSize is the default minimum connection pool size
	DefaultMinPoolSize = 10

	// PersonaCollection holds agent persona profiles
	PersonaCollection = "agents"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Config holds the connection settings for the store.
type Config struct {
	URI            string        // MongoDB connection string (required)
	Database       string        // Database name (required)
	AppName        string        // Client app name for monitoring
	MaxPoolSize    uint64        // Max connection pool size (default: 100)
	MinPoolSize    uint64        // Min connection pool size (default: 10)
	ConnectTimeout time.Duration // Connection timeout (default: 10s)
	Timeout        time.Duration // Per-operation timeout (default: 30s)
}

// Store wraps a single shared mongo.Client. One Store is created at process
// start and injected into every collaborator that needs it.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	config   Config
	log      *logger.Logger
}

// StoreError represents errors specific to store operations
type StoreError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return "store." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return "store." + e.Operation + ": " + e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// newStoreError creates a new StoreError
func newStoreError(operation, message string, cause error) *StoreError {
	return &StoreError{Operation: operation, Message: message, Cause: cause}
}

// Connect establishes the shared client connection with pooling and verifies
// it with a ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, newStoreError("Connect", "connection URI is required", nil)
	}
	if cfg.Database == "" {
		return nil, newStoreError("Connect", "database name is required", nil)
	}

	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = DefaultMaxPoolSize
	}
	if cfg.MinPoolSize == 0 {
		cfg.MinPoolSize = DefaultMinPoolSize
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AppName == "" {
		cfg.AppName = "Agora-Debate-Engine"
	}

	clientOpts := options.Client().ApplyURI(cfg.URI)
	clientOpts.SetMaxPoolSize(cfg.MaxPoolSize)
	clientOpts.SetMinPoolSize(cfg.MinPoolSize)
	clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
	clientOpts.SetAppName(cfg.AppName)
	clientOpts.SetRetryWrites(true)
	clientOpts.SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, newStoreError("Connect", "failed to connect to MongoDB", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, newStoreError("Connect", "failed to ping MongoDB", err)
	}

	s := &Store{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
		log:      logger.New("store"),
	}

	s.log.Info("", "Connected to MongoDB", map[string]interface{}{
		"database": cfg.Database,
		"max_pool": cfg.MaxPoolSize,
	})

	return s, nil
}

// Disconnect closes the client connection
func (s *Store) Disconnect(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.client.Disconnect(disconnectCtx); err != nil {
		return newStoreError("Disconnect", "failed to disconnect", err)
	}

	s.log.Info("", "Disconnected from MongoDB", nil)
	return nil
}

// HealthCheck verifies the MongoDB connection is healthy
func (s *Store) HealthCheck(ctx context.Context) (bool, time.Duration, error) {
	if s.client == nil {
		return false, 0, newStoreError("HealthCheck", "client not connected", nil)
	}

	start := time.Now()
	err := s.client.Ping(ctx, readpref.Primary())
	latency := time.Since(start)

	if err != nil {
		return false, latency, newStoreError("HealthCheck", "ping failed", err)
	}
	return true, latency, nil
}

// FetchDirect returns up to limit documents from a collection without any
// semantic filtering. Internal identifiers are stripped by projection.
func (s *Store) FetchDirect(ctx context.Context, collection string, limit int) ([]map[string]interface{}, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "embedding": 0}).
		SetLimit(int64(limit))

	cursor, err := s.database.Collection(collection).Find(opCtx, bson.M{}, opts)
	if err != nil {
		return nil, newStoreError("FetchDirect", fmt.Sprintf("find on %s failed", collection), err)
	}
	defer func() { _ = cursor.Close(opCtx) }()

	return decodeCursor(opCtx, cursor)
}

// VectorQuery describes an approximate nearest-neighbor lookup.
type VectorQuery struct {
	Collection    string    // Collection holding the embedded documents
	Vector        []float32 // Query embedding
	IndexName     string    // Search index name (e.g. "vector_index")
	Path          string    // Embedding field path (e.g. "embedding")
	CandidatePool int       // Number of ANN candidates to consider
	TopK          int       // Number of results to return
	Fields        []string  // Projected fields; _id is always excluded
}

// FetchByVector runs a $vectorSearch aggregation over a pre-built index and
// returns the top-K matches projected to the requested fields.
func (s *Store) FetchByVector(ctx context.Context, q VectorQuery) ([]map[string]interface{}, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	pipeline := vectorSearchPipeline(q)

	cursor, err := s.database.Collection(q.Collection).Aggregate(opCtx, pipeline)
	if err != nil {
		return nil, newStoreError("FetchByVector", fmt.Sprintf("vector search on %s failed", q.Collection), err)
	}
	defer func() { _ = cursor.Close(opCtx) }()

	return decodeCursor(opCtx, cursor)
}

// vectorSearchPipeline builds the aggregation pipeline for a VectorQuery.
// Split out so the shape can be tested without a live cluster.
func vectorSearchPipeline(q VectorQuery) mongo.Pipeline {
	projection := bson.D{{Key: "_id", Value: 0}}
	for _, field := range q.Fields {
		projection = append(projection, bson.E{Key: field, Value: 1})
	}

	return mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: q.IndexName},
			{Key: "queryVector", Value: q.Vector},
			{Key: "path", Value: q.Path},
			{Key: "numCandidates", Value: q.CandidatePool},
			{Key: "limit", Value: q.TopK},
		}}},
		bson.D{{Key: "$project", Value: projection}},
	}
}

// GetPersona resolves a persona profile by name from the agents collection.
// Returns ErrNotFound if no persona with that name exists.
func (s *Store) GetPersona(ctx context.Context, name string) (map[string]interface{}, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var doc bson.M
	err := s.database.Collection(PersonaCollection).
		FindOne(opCtx, bson.M{"name": name}, options.FindOne().SetProjection(bson.M{"_id": 0})).
		Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("persona %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, newStoreError("GetPersona", fmt.Sprintf("lookup of %q failed", name), err)
	}

	return bsonToMap(doc), nil
}

// decodeCursor decodes all documents from a cursor
func decodeCursor(ctx context.Context, cursor *mongo.Cursor) ([]map[string]interface{}, error) {
	var results []map[string]interface{}

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, bsonToMap(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// bsonToMap converts BSON document to Go map with proper type handling
func bsonToMap(doc bson.M) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range doc {
		result[k] = convertFromBSON(v)
	}
	return result
}

// convertFromBSON converts BSON types to JSON-serializable Go types
func convertFromBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time()
	case primitive.Timestamp:
		return map[string]interface{}{
			"t": val.T,
			"i": val.I,
		}
	case primitive.Binary:
		return val.Data
	case bson.M:
		return bsonToMap(val)
	case bson.A:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = convertFromBSON(item)
		}
		return result
	case primitive.D:
		result := make(map[string]interface{})
		for _, elem := range val {
			result[elem.Key] = convertFromBSON(elem.Value)
		}
		return result
	default:
		return val
	}
}
