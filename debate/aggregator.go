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
	"strings"
	"time"

	"agora/platform/shared/logger"
)

// DebateAggregator synthesizes the agents' stances into a final moderated
// verdict with exactly one generation call. The aggregator sees only agent
// outputs, never the raw retrieved context.
type DebateAggregator struct {
	generator Generator
	log       *logger.Logger
}

// NewDebateAggregator creates a debate aggregator over the generation service.
func NewDebateAggregator(generator Generator) *DebateAggregator {
	return &DebateAggregator{
		generator: generator,
		log:       logger.New("debate-aggregator"),
	}
}

// Summarize renders the moderator prompt and issues the aggregation call.
// Failure here fails the whole request, the same all-or-nothing policy as
// the agent fan-out.
func (d *DebateAggregator) Summarize(ctx context.Context, requestID, topic string, responses []AgentResponse, model string) (string, error) {
	start := time.Now()

	prompt := buildModeratorPrompt(topic, responses)

	summary, err := d.generator.Generate(ctx, model, prompt)
	if err != nil {
		promLLMCalls.WithLabelValues("aggregator", "error").Inc()
		return "", NewGenerationError("Moderator", model, wrapDeadline("aggregation", err))
	}
	promLLMCalls.WithLabelValues("aggregator", "success").Inc()

	d.log.InfoWithDuration(requestID, "Debate summarized",
		float64(time.Since(start).Milliseconds()), map[string]interface{}{
			"model":  model,
			"agents": len(responses),
		})

	return summary, nil
}

// buildModeratorPrompt renders every agent's name and verbatim response into
// the moderator instruction.
func buildModeratorPrompt(topic string, responses []AgentResponse) string {
	arguments := make([]string, len(responses))
	for i, r := range responses {
		arguments[i] = fmt.Sprintf("%s: %s", r.Agent, r.Response)
	}

	var b strings.Builder
	b.WriteString("You are a debate moderator.\n")
	fmt.Fprintf(&b, "Summarize the debate on: %q, make a final decision, and provide a detailed rationale.\n", topic)
	b.WriteString("Here are the arguments from each agent:\n")
	b.WriteString(strings.Join(arguments, "\n\n"))
	b.WriteString("\n\n")
	b.WriteString("Only suggest a final stance and rationale, no other information.\n")
	b.WriteString("The summary should be in the format:\n")
	b.WriteString("Final Stance: **<Your stance here>**\n")
	b.WriteString("Rationale: <Your detailed rationale here>\n")

	return b.String()
}
