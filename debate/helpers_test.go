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
	"fmt"
	"sync"
)

// Shared in-memory fakes for the engine's collaborator interfaces. All of
// them are safe for concurrent use because the fan-out paths call them from
// multiple goroutines.

type fakeRetriever struct {
	mu          sync.Mutex
	directDocs  map[string][]Document
	vectorDocs  map[string][]Document
	directCalls []string
	vectorCalls []vectorCall
	directErr   error
	vectorErr   error
}

type vectorCall struct {
	collection    string
	vector        []float32
	candidatePool int
	topK          int
	fields        []string
}

func (f *fakeRetriever) FetchDirect(ctx context.Context, collection string, limit int) ([]Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directCalls = append(f.directCalls, collection)
	if f.directErr != nil {
		return nil, f.directErr
	}
	docs := f.directDocs[collection]
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (f *fakeRetriever) FetchByVector(ctx context.Context, collection string, vector []float32, candidatePool, topK int, fields []string) ([]Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectorCalls = append(f.vectorCalls, vectorCall{
		collection:    collection,
		vector:        vector,
		candidatePool: candidatePool,
		topK:          topK,
		fields:        fields,
	})
	if f.vectorErr != nil {
		return nil, f.vectorErr
	}
	return f.vectorDocs[collection], nil
}

type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	calls  []string
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type generatorCall struct {
	model  string
	prompt string
}

type fakeGenerator struct {
	mu        sync.Mutex
	calls     []generatorCall
	responses map[string]string // keyed by model
	failModel string
	failErr   error
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generatorCall{model: model, prompt: prompt})
	if model == f.failModel && f.failErr != nil {
		return "", f.failErr
	}
	if resp, ok := f.responses[model]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Stance: **Agree**\nRationale: response from %s", model), nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGenerator) callsForModel(model string) []generatorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []generatorCall
	for _, c := range f.calls {
		if c.model == model {
			out = append(out, c)
		}
	}
	return out
}

type fakePersonaSource struct {
	mu       sync.Mutex
	personas map[string]*PersonaConfig
	calls    []string
	err      error
}

func (f *fakePersonaSource) GetPersona(ctx context.Context, name string) (*PersonaConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	persona, ok := f.personas[name]
	if !ok {
		return nil, fmt.Errorf("persona %q: %w", name, ErrPersonaNotFound)
	}
	return persona, nil
}
