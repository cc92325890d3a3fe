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
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// PromptOptions bounds prompt construction.
type PromptOptions struct {
	// PreviewDocs is the number of documents rendered per collection.
	PreviewDocs int

	// WordLimit is the advisory response length, communicated as an
	// instruction rather than enforced mechanically.
	WordLimit int
}

// BuildAgentPrompt renders the prompt for one agent from its persona, the
// debate topic, and the shared context bundle. It is deterministic and free
// of side effects: collections are rendered in sorted name order and
// documents as canonical JSON, so identical inputs always yield identical
// prompt text. The bundle is never mutated.
func BuildAgentPrompt(persona *PersonaConfig, topic string, bundle ContextBundle, opts PromptOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a %s who %s.\n", persona.Name, persona.Role, persona.Description)
	b.WriteString("Your task is to respond to the following topic:\n")
	fmt.Fprintf(&b, "%q\n\n", topic)

	b.WriteString("Use insights from your assigned datasets:\n")
	b.WriteString(renderContextPreview(bundle, opts.PreviewDocs))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Respond based on your unique perspective (%s), and be prepared to challenge or support other agents.\n", persona.Role)
	fmt.Fprintf(&b, "Always provide a rationale for your responses and answer in brief within %d words. Keep it concise and to the point.\n", opts.WordLimit)
	b.WriteString("Your response should be in the format:\n")
	b.WriteString("Stance: **<Your stance here>**\n")
	b.WriteString("Rationale: <Your rationale here>\n")

	return b.String()
}

// renderContextPreview renders the first previewDocs documents of each
// collection, one collection per line, in sorted collection order.
func renderContextPreview(bundle ContextBundle, previewDocs int) string {
	names := make([]string, 0, len(bundle))
	for name := range bundle {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		docs := bundle[name]
		if len(docs) > previewDocs {
			docs = docs[:previewDocs]
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, renderDocuments(docs)))
	}

	return strings.Join(lines, "\n\n")
}

// renderDocuments renders documents as a JSON array. encoding/json sorts map
// keys, which keeps the rendering canonical.
func renderDocuments(docs []Document) string {
	data, err := json.Marshal(docs)
	if err != nil {
		// Documents come from JSON-decoded store rows, so this only
		// triggers on non-serializable test fixtures.
		return fmt.Sprintf("%v", docs)
	}
	return string(data)
}
