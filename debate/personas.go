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
	"time"

	"agora/platform/shared/logger"
	"agora/platform/store/cache"
)

// CachedPersonaSource layers a Redis cache over a PersonaSource. Persona
// profiles are immutable reference data, so a short TTL only bounds how long
// a deleted persona keeps resolving. Cache failures degrade to the source.
type CachedPersonaSource struct {
	source PersonaSource
	cache  *cache.Cache
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedPersonaSource wraps source with a cache. If c is nil the source
// is returned unwrapped.
func NewCachedPersonaSource(source PersonaSource, c *cache.Cache, ttl time.Duration) PersonaSource {
	if c == nil {
		return source
	}
	return &CachedPersonaSource{
		source: source,
		cache:  c,
		ttl:    ttl,
		log:    logger.New("persona-store"),
	}
}

// GetPersona resolves a persona, consulting the cache first.
func (p *CachedPersonaSource) GetPersona(ctx context.Context, name string) (*PersonaConfig, error) {
	key := "persona:" + name

	var cached PersonaConfig
	err := p.cache.GetJSON(ctx, key, &cached)
	if err == nil && cached.Name != "" {
		return &cached, nil
	}
	if err != nil && err != cache.ErrMiss {
		p.log.Warn("", "Persona cache read failed", map[string]interface{}{
			"persona": name,
			"error":   err.Error(),
		})
	}

	persona, err := p.source.GetPersona(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := p.cache.SetJSON(ctx, key, persona, p.ttl); err != nil {
		p.log.Warn("", "Persona cache write failed", map[string]interface{}{
			"persona": name,
			"error":   err.Error(),
		})
	}

	return persona, nil
}
