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
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promDebatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_debates_total",
			Help: "Total number of debate requests by outcome",
		},
		[]string{"status"},
	)
	promDebateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agora_debate_duration_seconds",
			Help:    "End-to-end debate latency",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"status"},
	)
	promLLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_llm_calls_total",
			Help: "Total LLM calls by operation (agent, aggregator, embedding)",
		},
		[]string{"operation", "status"},
	)
	promRetrievalOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_retrieval_ops_total",
			Help: "Context retrieval operations by collection and mode",
		},
		[]string{"collection", "mode"},
	)
)

func init() {
	prometheus.MustRegister(promDebatesTotal)
	prometheus.MustRegister(promDebateDuration)
	prometheus.MustRegister(promLLMCalls)
	prometheus.MustRegister(promRetrievalOps)
}

// maxLatencySamples bounds the sliding window behind avg_latency_ms.
const maxLatencySamples = 1000

// EngineMetrics tracks aggregate counters for the JSON metrics endpoint.
type EngineMetrics struct {
	mu              sync.RWMutex
	startTime       time.Time
	totalDebates    int64
	successDebates  int64
	failedDebates   int64
	debateLatencies []int64
}

// NewEngineMetrics creates an EngineMetrics tracker.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{startTime: time.Now()}
}

// RecordDebate records one finished debate.
func (m *EngineMetrics) RecordDebate(success bool, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDebates++
	if success {
		m.successDebates++
	} else {
		m.failedDebates++
	}
	m.debateLatencies = append(m.debateLatencies, latency.Milliseconds())
	if len(m.debateLatencies) > maxLatencySamples {
		m.debateLatencies = m.debateLatencies[1:]
	}

	status := "success"
	if !success {
		status = "failed"
	}
	promDebatesTotal.WithLabelValues(status).Inc()
	promDebateDuration.WithLabelValues(status).Observe(latency.Seconds())
}

// Snapshot returns the current aggregate values for the JSON endpoint.
func (m *EngineMetrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avgMS float64
	if len(m.debateLatencies) > 0 {
		var sum int64
		for _, l := range m.debateLatencies {
			sum += l
		}
		avgMS = float64(sum) / float64(len(m.debateLatencies))
	}

	return map[string]interface{}{
		"uptime_seconds":  int64(time.Since(m.startTime).Seconds()),
		"total_debates":   m.totalDebates,
		"success_debates": m.successDebates,
		"failed_debates":  m.failedDebates,
		"avg_latency_ms":  avgMS,
	}
}
