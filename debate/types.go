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

// Package debate implements the debate orchestration engine: context
// retrieval routing, per-agent prompt construction, concurrent model
// fan-out, and moderated aggregation of agent stances.
package debate

// Document is a retrieved record projected to its prompting fields.
type Document = map[string]interface{}

// ContextBundle aggregates retrieved documents per source collection for one
// request. It is built once during context collection and treated as
// read-only afterwards.
type ContextBundle = map[string][]Document

// DebateRequest describes one debate to orchestrate.
type DebateRequest struct {
	// Topic is the question the agents debate.
	Topic string `json:"topic"`

	// Agents maps persona name to the model that speaks for it.
	Agents map[string]string `json:"agents"`

	// ContextScope lists the collections to consult for shared context.
	ContextScope []string `json:"context_scope"`

	// AggregatorModel is the model used for the moderator synthesis call.
	AggregatorModel string `json:"aggregator_model"`
}

// PersonaConfig is the immutable profile of a debate persona.
type PersonaConfig struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// AgentResponse is one agent's stance, produced exactly once per agent per
// successful debate.
type AgentResponse struct {
	Agent    string `json:"agent"`
	Model    string `json:"model"`
	Response string `json:"response"`
}

// DebateResult is the terminal output of a successful debate.
type DebateResult struct {
	Topic     string          `json:"topic"`
	Agents    []string        `json:"agents"`
	Responses []AgentResponse `json:"responses"`
	Summary   string          `json:"summary"`
}

// ErrorResult is the terminal output of a failed debate. A request yields
// exactly one of DebateResult or ErrorResult, never both.
type ErrorResult struct {
	Error string `json:"error"`
	Trace string `json:"traceback"`
}
