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

// Package cache provides a small Redis-backed JSON cache used to avoid
// repeated persona lookups and query-embedding calls. All failures are
// reported to callers, who are expected to treat the cache as best-effort.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when a key is not present in the cache.
var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis client with JSON encoding and a key namespace.
type Cache struct {
	client    *redis.Client
	namespace string
}

// Config holds the connection settings for the cache.
type Config struct {
	URL       string // Redis URL (e.g. redis://localhost:6379/0)
	Namespace string // Key prefix (default: "agora")
}

// Connect creates a Cache and verifies the connection with a ping.
func Connect(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "agora"
	}

	return &Cache{client: client, namespace: namespace}, nil
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// key builds the namespaced Redis key.
func (c *Cache) key(k string) string {
	return c.namespace + ":" + k
}

// GetJSON fetches a key and unmarshals it into dest.
// Returns ErrMiss when the key is absent.
func (c *Cache) GetJSON(ctx context.Context, k string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.key(k)).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache entry corrupt: %w", err)
	}
	return nil
}

// SetJSON marshals value and stores it under the key with a TTL.
// A zero TTL stores the entry without expiry.
func (c *Cache) SetJSON(ctx context.Context, k string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache value not serializable: %w", err)
	}

	if err := c.client.Set(ctx, c.key(k), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// HealthCheck verifies the Redis connection is healthy.
func (c *Cache) HealthCheck(ctx context.Context) (bool, time.Duration, error) {
	start := time.Now()
	err := c.client.Ping(ctx).Err()
	latency := time.Since(start)
	if err != nil {
		return false, latency, fmt.Errorf("redis ping failed: %w", err)
	}
	return true, latency, nil
}
