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
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeAllPreservesMapping(t *testing.T) {
	generator := &fakeGenerator{
		responses: map[string]string{
			"model-a": "Stance: **Yes**",
			"model-b": "Stance: **No**",
			"model-c": "Stance: **Maybe**",
		},
	}
	invoker := NewAgentInvoker(generator)

	invocations := []AgentInvocation{
		{Agent: "Nova", Model: "model-a", Prompt: "prompt-nova"},
		{Agent: "Orion", Model: "model-b", Prompt: "prompt-orion"},
		{Agent: "Zeta", Model: "model-c", Prompt: "prompt-zeta"},
	}

	responses, err := invoker.InvokeAll(context.Background(), "req-1", invocations)
	require.NoError(t, err)
	require.Len(t, responses, 3)

	// Positional mapping holds regardless of completion order
	assert.Equal(t, AgentResponse{Agent: "Nova", Model: "model-a", Response: "Stance: **Yes**"}, responses[0])
	assert.Equal(t, AgentResponse{Agent: "Orion", Model: "model-b", Response: "Stance: **No**"}, responses[1])
	assert.Equal(t, AgentResponse{Agent: "Zeta", Model: "model-c", Response: "Stance: **Maybe**"}, responses[2])
}

func TestInvokeAllRunsConcurrently(t *testing.T) {
	// Every invocation blocks until all of them have started, which only
	// resolves if the calls are issued before any is awaited.
	const agents = 3
	var started sync.WaitGroup
	started.Add(agents)

	generator := &blockingGenerator{started: &started}
	invoker := NewAgentInvoker(generator)

	invocations := make([]AgentInvocation, agents)
	for i := range invocations {
		invocations[i] = AgentInvocation{Agent: "agent", Model: "model", Prompt: "p"}
	}

	responses, err := invoker.InvokeAll(context.Background(), "req-1", invocations)
	require.NoError(t, err)
	assert.Len(t, responses, agents)
}

type blockingGenerator struct {
	started *sync.WaitGroup
}

func (b *blockingGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	b.started.Done()
	b.started.Wait()
	return "ok", nil
}

func TestInvokeAllFailAll(t *testing.T) {
	generator := &fakeGenerator{
		failModel: "model-b",
		failErr:   errors.New("rate limited"),
	}
	invoker := NewAgentInvoker(generator)

	invocations := []AgentInvocation{
		{Agent: "Nova", Model: "model-a", Prompt: "p"},
		{Agent: "Orion", Model: "model-b", Prompt: "p"},
	}

	responses, err := invoker.InvokeAll(context.Background(), "req-1", invocations)
	require.Error(t, err)

	// No partial response set survives a single failure
	assert.Nil(t, responses)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "Orion", genErr.Agent)
	assert.Equal(t, "model-b", genErr.Model)
}

func TestInvokeAllDeadlineBecomesUpstreamTimeout(t *testing.T) {
	generator := &fakeGenerator{
		failModel: "model-a",
		failErr:   context.DeadlineExceeded,
	}
	invoker := NewAgentInvoker(generator)

	_, err := invoker.InvokeAll(context.Background(), "req-1", []AgentInvocation{
		{Agent: "Nova", Model: "model-a", Prompt: "p"},
	})
	require.Error(t, err)

	var timeout *UpstreamTimeout
	assert.True(t, errors.As(err, &timeout))
}

func TestInvokeAllEmpty(t *testing.T) {
	invoker := NewAgentInvoker(&fakeGenerator{})

	responses, err := invoker.InvokeAll(context.Background(), "req-1", nil)
	require.NoError(t, err)
	assert.Empty(t, responses)
}
