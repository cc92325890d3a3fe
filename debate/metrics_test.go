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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordDebateCounters(t *testing.T) {
	m := NewEngineMetrics()

	m.RecordDebate(true, 100*time.Millisecond)
	m.RecordDebate(true, 300*time.Millisecond)
	m.RecordDebate(false, 50*time.Millisecond)

	snapshot := m.Snapshot()
	assert.EqualValues(t, 3, snapshot["total_debates"])
	assert.EqualValues(t, 2, snapshot["success_debates"])
	assert.EqualValues(t, 1, snapshot["failed_debates"])
	assert.InDelta(t, 150.0, snapshot["avg_latency_ms"], 0.01)
}

func TestRecordDebateLatencyWindowBounded(t *testing.T) {
	m := NewEngineMetrics()

	for i := 0; i < maxLatencySamples+500; i++ {
		m.RecordDebate(true, time.Millisecond)
	}

	// The window drops the oldest samples; the total counters keep counting
	assert.Len(t, m.debateLatencies, maxLatencySamples)
	assert.EqualValues(t, int64(maxLatencySamples+500), m.Snapshot()["total_debates"])
}

func TestRecordDebateWindowAverageTracksRecentSamples(t *testing.T) {
	m := NewEngineMetrics()

	for i := 0; i < maxLatencySamples; i++ {
		m.RecordDebate(true, time.Second)
	}
	for i := 0; i < maxLatencySamples; i++ {
		m.RecordDebate(true, 10*time.Millisecond)
	}

	// Old one-second samples have aged out entirely
	assert.InDelta(t, 10.0, m.Snapshot()["avg_latency_ms"], 0.01)
}
