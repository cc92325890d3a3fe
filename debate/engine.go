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
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"agora/platform/shared/logger"
)

// State identifies where a debate is in its lifecycle.
type State string

const (
	StateCollectingContext State = "CollectingContext"
	StateBuildingPrompts   State = "BuildingPrompts"
	StateInvokingAgents    State = "InvokingAgents"
	StateAggregating       State = "Aggregating"
	StateDone              State = "Done"
	StateFailed            State = "Failed"
)

// Engine sequences one debate: context collection, prompt construction,
// concurrent agent invocation, and moderated aggregation. Transitions are
// strictly sequential except InvokingAgents, which fans out and fans back in
// before the state advances. Every entity the engine creates is request
// scoped; nothing persists across calls.
type Engine struct {
	router     *ContextRouter
	personas   PersonaSource
	invoker    *AgentInvoker
	aggregator *DebateAggregator
	promptOpts PromptOptions
	metrics    *EngineMetrics
	log        *logger.Logger
}

// NewEngine wires the engine from its collaborators. metrics may be nil.
func NewEngine(router *ContextRouter, personas PersonaSource, invoker *AgentInvoker, aggregator *DebateAggregator, promptOpts PromptOptions, metrics *EngineMetrics) *Engine {
	return &Engine{
		router:     router,
		personas:   personas,
		invoker:    invoker,
		aggregator: aggregator,
		promptOpts: promptOpts,
		metrics:    metrics,
		log:        logger.New("debate-engine"),
	}
}

// Orchestrate runs one debate to completion. It returns exactly one of a
// DebateResult or an ErrorResult and never raises past its own boundary:
// errors and panics alike are absorbed into the ErrorResult.
func (e *Engine) Orchestrate(ctx context.Context, requestID string, req DebateRequest) (result *DebateResult, errResult *ErrorResult) {
	start := time.Now()
	state := StateCollectingContext

	defer func() {
		if r := recover(); r != nil {
			result = nil
			errResult = &ErrorResult{
				Error: fmt.Sprintf("panic during %s: %v", state, r),
				Trace: fmt.Sprintf("state=%s\npanic: %v\n%s", state, r, debug.Stack()),
			}
		}
		if e.metrics != nil {
			e.metrics.RecordDebate(errResult == nil, time.Since(start))
		}
	}()

	// Request validation happens before any network call is issued
	if err := validateRequest(req); err != nil {
		return nil, e.fail(requestID, state, err)
	}

	// CollectingContext
	e.log.Info(requestID, "Collecting context", map[string]interface{}{
		"topic":       req.Topic,
		"collections": req.ContextScope,
	})
	bundle, err := e.router.CollectContext(ctx, requestID, req.Topic, req.ContextScope)
	if err != nil {
		return nil, e.fail(requestID, state, err)
	}

	// BuildingPrompts
	state = StateBuildingPrompts
	agents := sortedAgentNames(req.Agents)
	invocations := make([]AgentInvocation, 0, len(agents))
	for _, name := range agents {
		persona, err := e.personas.GetPersona(ctx, name)
		if err != nil {
			msg := fmt.Sprintf("persona lookup failed for %q", name)
			if errors.Is(err, ErrPersonaNotFound) {
				msg = fmt.Sprintf("unknown persona %q", name)
			}
			return nil, e.fail(requestID, state, &ConfigurationError{
				Message: msg,
				Cause:   err,
			})
		}
		invocations = append(invocations, AgentInvocation{
			Agent:  name,
			Model:  req.Agents[name],
			Prompt: BuildAgentPrompt(persona, req.Topic, bundle, e.promptOpts),
		})
	}

	// InvokingAgents: fan out, then fan in before the state advances
	state = StateInvokingAgents
	e.log.Info(requestID, "Invoking agents", map[string]interface{}{"agents": agents})
	responses, err := e.invoker.InvokeAll(ctx, requestID, invocations)
	if err != nil {
		return nil, e.fail(requestID, state, err)
	}

	// Aggregating
	state = StateAggregating
	summary, err := e.aggregator.Summarize(ctx, requestID, req.Topic, responses, req.AggregatorModel)
	if err != nil {
		return nil, e.fail(requestID, state, err)
	}

	// Done
	state = StateDone
	e.log.InfoWithDuration(requestID, "Debate completed",
		float64(time.Since(start).Milliseconds()), map[string]interface{}{
			"agents": len(responses),
		})

	return &DebateResult{
		Topic:     req.Topic,
		Agents:    agents,
		Responses: responses,
		Summary:   summary,
	}, nil
}

// fail transitions to the absorbing Failed state and builds the ErrorResult.
func (e *Engine) fail(requestID string, at State, err error) *ErrorResult {
	e.log.ErrorWithCause(requestID, "Debate failed", err, map[string]interface{}{
		"state": string(at),
	})

	return &ErrorResult{
		Error: err.Error(),
		Trace: diagnosticTrace(at, err),
	}
}

// diagnosticTrace renders the failing state and the full error chain.
func diagnosticTrace(at State, err error) string {
	trace := fmt.Sprintf("state=%s\n", at)
	for depth := 0; err != nil; depth++ {
		trace += fmt.Sprintf("%*s%s\n", depth*2, "", err.Error())
		err = errors.Unwrap(err)
	}
	return trace
}

// validateRequest enforces the request invariants.
func validateRequest(req DebateRequest) error {
	if req.Topic == "" {
		return NewConfigurationError("topic must not be empty")
	}
	if len(req.Agents) == 0 {
		return NewConfigurationError("agents must not be empty")
	}
	if req.AggregatorModel == "" {
		return NewConfigurationError("aggregator model must not be empty")
	}
	for name, model := range req.Agents {
		if name == "" || model == "" {
			return NewConfigurationError("agent names and models must not be empty")
		}
	}
	return nil
}

// sortedAgentNames gives the deterministic participation order used for
// prompts, responses, and the result envelope.
func sortedAgentNames(agents map[string]string) []string {
	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
