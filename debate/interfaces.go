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
)

// The engine consumes its collaborators through these interfaces so that the
// store, embedding, and generation services can be substituted in tests.
// Concrete implementations are wired in Run().

// Retriever is the document retrieval service behind the context router.
type Retriever interface {
	// FetchDirect returns up to limit documents from a collection without
	// semantic filtering. Internal identifiers are stripped.
	FetchDirect(ctx context.Context, collection string, limit int) ([]Document, error)

	// FetchByVector runs an approximate nearest-neighbor search over the
	// collection's embedding index and returns the topK best matches
	// projected to the given fields.
	FetchByVector(ctx context.Context, collection string, vector []float32, candidatePool, topK int, fields []string) ([]Document, error)
}

// Embedder converts text into a fixed-length embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator issues one generation call against a named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// PersonaSource resolves a persona name to its profile.
type PersonaSource interface {
	GetPersona(ctx context.Context, name string) (*PersonaConfig, error)
}
