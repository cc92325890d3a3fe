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

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertRecords bulk-loads raw records into a collection.
func (s *Store) InsertRecords(ctx context.Context, collection string, records []map[string]interface{}) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}

	result, err := s.database.Collection(collection).InsertMany(opCtx, docs)
	if err != nil {
		return 0, newStoreError("InsertRecords", fmt.Sprintf("insert into %s failed", collection), err)
	}

	s.log.Info("", "Records inserted", map[string]interface{}{
		"collection": collection,
		"count":      len(result.InsertedIDs),
	})

	return len(result.InsertedIDs), nil
}

// CreateVectorIndex creates a cosine-similarity vector search index on the
// given embedding field. The index must exist before FetchByVector is used.
func (s *Store) CreateVectorIndex(ctx context.Context, collection, indexName, path string, dimensions int) error {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	model := mongo.SearchIndexModel{
		Definition: bson.D{{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "numDimensions", Value: dimensions},
				{Key: "path", Value: path},
				{Key: "similarity", Value: "cosine"},
			},
		}}},
		Options: options.SearchIndexes().SetName(indexName).SetType("vectorSearch"),
	}

	if _, err := s.database.Collection(collection).SearchIndexes().CreateOne(opCtx, model); err != nil {
		return newStoreError("CreateVectorIndex", fmt.Sprintf("index creation on %s failed", collection), err)
	}

	s.log.Info("", "Vector index building", map[string]interface{}{
		"collection": collection,
		"index":      indexName,
		"dimensions": dimensions,
	})

	return nil
}

// FieldDocument pairs a document identifier with the value of one field.
type FieldDocument struct {
	ID    interface{}
	Value interface{}
}

// FieldValues returns the identifier and the named field for every document
// in a collection. Used by ingestion to backfill embeddings.
func (s *Store) FieldValues(ctx context.Context, collection, field string) ([]FieldDocument, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{field: 1})

	cursor, err := s.database.Collection(collection).Find(opCtx, bson.M{}, opts)
	if err != nil {
		return nil, newStoreError("FieldValues", fmt.Sprintf("find on %s failed", collection), err)
	}
	defer func() { _ = cursor.Close(opCtx) }()

	var docs []FieldDocument
	for cursor.Next(opCtx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, FieldDocument{ID: doc["_id"], Value: doc[field]})
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// SetField sets a single field on a document identified by its _id.
func (s *Store) SetField(ctx context.Context, collection string, id interface{}, field string, value interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.database.Collection(collection).UpdateOne(
		opCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return newStoreError("SetField", fmt.Sprintf("update on %s failed", collection), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("document %v in %s: %w", id, collection, ErrNotFound)
	}

	return nil
}
