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
	"time"

	"golang.org/x/sync/errgroup"

	"agora/platform/shared/logger"
)

// AgentInvocation is one prepared generation call: a persona, the model that
// speaks for it, and the rendered prompt.
type AgentInvocation struct {
	Agent  string
	Model  string
	Prompt string
}

// AgentInvoker fans out one generation call per agent and waits for all of
// them before returning. A failure in any single invocation fails the whole
// fan-out; in-flight siblings are cancelled through the group context and no
// partial response set is ever returned.
type AgentInvoker struct {
	generator Generator
	log       *logger.Logger
}

// NewAgentInvoker creates an agent invoker over the generation service.
func NewAgentInvoker(generator Generator) *AgentInvoker {
	return &AgentInvoker{
		generator: generator,
		log:       logger.New("agent-invoker"),
	}
}

// InvokeAll issues every invocation before awaiting any of them, then waits
// for all to complete. Responses are positioned by invocation index, so the
// persona-to-response mapping never depends on completion order.
func (a *AgentInvoker) InvokeAll(ctx context.Context, requestID string, invocations []AgentInvocation) ([]AgentResponse, error) {
	responses := make([]AgentResponse, len(invocations))

	g, gctx := errgroup.WithContext(ctx)
	for i, inv := range invocations {
		i, inv := i, inv
		g.Go(func() (err error) {
			// A panicking generator must fail the debate, not the process
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic invoking agent %q: %v", inv.Agent, r)
				}
			}()

			start := time.Now()

			content, err := a.generator.Generate(gctx, inv.Model, inv.Prompt)
			if err != nil {
				promLLMCalls.WithLabelValues("agent", "error").Inc()
				a.log.ErrorWithCause(requestID, "Agent invocation failed", err, map[string]interface{}{
					"agent": inv.Agent,
					"model": inv.Model,
				})
				return NewGenerationError(inv.Agent, inv.Model, wrapDeadline("generation", err))
			}

			promLLMCalls.WithLabelValues("agent", "success").Inc()
			a.log.InfoWithDuration(requestID, "Agent responded",
				float64(time.Since(start).Milliseconds()), map[string]interface{}{
					"agent": inv.Agent,
					"model": inv.Model,
				})

			responses[i] = AgentResponse{
				Agent:    inv.Agent,
				Model:    inv.Model,
				Response: content,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return responses, nil
}
