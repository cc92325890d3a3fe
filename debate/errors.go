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
)

// The engine never recovers from any of these locally: every error during
// context collection, prompting, invocation, or aggregation terminates the
// whole request as a single ErrorResult.

// ErrPersonaNotFound marks a persona lookup that found no profile, as
// opposed to one that failed to reach the store. PersonaSource
// implementations wrap it so callers can tell the two apart.
var ErrPersonaNotFound = errors.New("persona not found")

// ConfigurationError indicates a bad or unknown collection or persona, or an
// invalid request shape. Raised before any network call where possible.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return "configuration error: " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a ConfigurationError
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// RetrievalError indicates an embedding, vector search, or direct fetch
// failure while collecting context.
type RetrievalError struct {
	Collection string
	Cause      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval error for collection %q: %v", e.Collection, e.Cause)
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// NewRetrievalError creates a RetrievalError
func NewRetrievalError(collection string, cause error) *RetrievalError {
	return &RetrievalError{Collection: collection, Cause: cause}
}

// GenerationError indicates a model call failure, for any agent or the
// aggregator.
type GenerationError struct {
	Agent string
	Model string
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error for agent %q (model %s): %v", e.Agent, e.Model, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError creates a GenerationError
func NewGenerationError(agent, model string, cause error) *GenerationError {
	return &GenerationError{Agent: agent, Model: model, Cause: cause}
}

// UpstreamTimeout indicates the request deadline expired while waiting on an
// external service.
type UpstreamTimeout struct {
	Operation string
	Cause     error
}

func (e *UpstreamTimeout) Error() string {
	return fmt.Sprintf("upstream timeout during %s: %v", e.Operation, e.Cause)
}

func (e *UpstreamTimeout) Unwrap() error {
	return e.Cause
}

// wrapDeadline converts context expiry into an UpstreamTimeout so callers can
// distinguish deadline pressure from provider failures.
func wrapDeadline(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamTimeout{Operation: operation, Cause: err}
	}
	return err
}
