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

// Package llm provides a unified interface and types for LLM (Large Language
// Model) providers. This package defines the common abstractions used by the
// debate engine, enabling pluggable provider implementations.
package llm

import (
	"time"
)

// ProviderType identifies the type of LLM provider.
// Standard types are defined as constants, but custom types can be used
// for third-party or self-hosted providers.
type ProviderType string

// Standard provider types supported out of the box.
const (
	// ProviderTypeTogether represents Together AI hosted open models.
	ProviderTypeTogether ProviderType = "together"

	// ProviderTypeCustom represents a custom/third-party provider.
	ProviderTypeCustom ProviderType = "custom"
)

// CompletionRequest encapsulates all parameters for an LLM completion request.
// This is the unified request type used across all providers.
type CompletionRequest struct {
	// Prompt is the user's input text/question.
	Prompt string `json:"prompt"`

	// SystemPrompt is an optional system message that sets context/behavior.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits the maximum number of tokens in the response.
	// If 0, provider defaults are used.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// nil means unset; the provider applies its default.
	Temperature *float64 `json:"temperature,omitempty"`

	// Model overrides the provider's default model.
	// Format is provider-specific (e.g., "meta-llama/Llama-3.3-70B-Instruct-Turbo").
	Model string `json:"model,omitempty"`

	// StopSequences are strings that cause generation to stop.
	StopSequences []string `json:"stop_sequences,omitempty"`
}

// CompletionResponse contains the result of an LLM completion.
type CompletionResponse struct {
	// Content is the generated text response.
	Content string `json:"content"`

	// Model is the actual model used (may differ from requested).
	Model string `json:"model"`

	// Usage contains token usage statistics.
	Usage UsageStats `json:"usage"`

	// Latency is the time taken to generate the response.
	Latency time.Duration `json:"latency"`

	// FinishReason indicates why generation stopped.
	// Common values: "stop", "length", "content_filter".
	FinishReason string `json:"finish_reason,omitempty"`
}

// UsageStats tracks token usage for billing and monitoring.
type UsageStats struct {
	// PromptTokens is the number of tokens in the input.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens generated.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the sum of prompt and completion tokens.
	TotalTokens int `json:"total_tokens"`
}

// EmbeddingRequest encapsulates the parameters for an embedding request.
type EmbeddingRequest struct {
	// Input is the text to embed.
	Input string `json:"input"`

	// Model overrides the provider's default embedding model.
	Model string `json:"model,omitempty"`
}

// HealthCheckResult represents the outcome of a provider health check.
type HealthCheckResult struct {
	// Healthy indicates whether the provider is operational.
	Healthy bool `json:"healthy"`

	// Latency is the round-trip time of the health probe.
	Latency time.Duration `json:"latency"`

	// Error contains the failure detail if unhealthy.
	Error string `json:"error,omitempty"`

	// Timestamp records when the check was performed.
	Timestamp time.Time `json:"timestamp"`
}
