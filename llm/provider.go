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

package llm

import (
	"context"
)

// Provider is the unified interface for all LLM providers.
// Implementations must be safe for concurrent use.
//
// The debate engine issues one Complete call per agent and one per
// aggregation, plus Embed calls for semantic retrieval, so providers
// should reuse a single underlying HTTP client across calls.
type Provider interface {
	// Name returns the unique identifier for this provider instance.
	// This is used for routing, logging, and metrics.
	Name() string

	// Type returns the provider type (e.g., "together").
	// This identifies the underlying implementation.
	Type() ProviderType

	// Complete generates a completion for the given request.
	// The context should be used for cancellation and timeout.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Embed converts text into a fixed-length numeric vector using the
	// provider's embedding endpoint.
	Embed(ctx context.Context, req EmbeddingRequest) ([]float32, error)

	// HealthCheck verifies the provider is operational.
	// Implementations should check API connectivity and authentication.
	// This method should complete within a reasonable timeout (e.g., 10s).
	HealthCheck(ctx context.Context) (*HealthCheckResult, error)
}
