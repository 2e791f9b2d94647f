package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry, string) {
	t.Helper()
	reg := prometheus.NewRegistry()
	ns := nextTestNamespace()
	return NewCollector(ns, reg, zap.NewNop()), reg, ns
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector, _, _ := newTestCollector(t)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.httpRequestDuration)
	assert.NotNil(t, collector.generationsTotal)
	assert.NotNil(t, collector.generationDuration)
	assert.NotNil(t, collector.upstreamStatus)
	assert.NotNil(t, collector.imageBytes)
}

func TestNewCollector_NilRegistererUsesDefault(t *testing.T) {
	ns := nextTestNamespace()
	collector := NewCollector(ns, nil, nil)
	collector.RecordGeneration("text_to_image", OutcomeRejected, 0, 0)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == ns+"_image_generations_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector, _, _ := newTestCollector(t)

	collector.RecordHTTPRequest("POST", "/v1/events", 200, 100*time.Millisecond, 1024, 2048)
	collector.RecordHTTPRequest("POST", "/v1/events", 201, 50*time.Millisecond, 512, 1024)
	collector.RecordHTTPRequest("POST", "/v1/events", 500, 50*time.Millisecond, 512, 1024)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/v1/events", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/v1/events", "5xx")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.httpRequestDuration))
}

func TestCollector_RecordRateLimited(t *testing.T) {
	collector, _, _ := newTestCollector(t)
	collector.RecordRateLimited("/v1/events")
	collector.RecordRateLimited("/v1/events")
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.httpRateLimited.WithLabelValues("/v1/events")))
}

func TestCollector_RecordGeneration(t *testing.T) {
	collector, reg, ns := newTestCollector(t)

	collector.RecordGeneration("image_to_image", OutcomeSuccess, 3*time.Second, 200*1024)
	collector.RecordGeneration("image_to_image", OutcomeStatus, time.Second, 0)
	collector.RecordGeneration("image_to_image", OutcomeRejected, 0, 0)
	collector.RecordUpstreamStatus(404)

	expected := fmt.Sprintf(`
# HELP %[1]s_image_generations_total Total number of plugin invocations by outcome
# TYPE %[1]s_image_generations_total counter
%[1]s_image_generations_total{mode="image_to_image",outcome="rejected"} 1
%[1]s_image_generations_total{mode="image_to_image",outcome="success"} 1
%[1]s_image_generations_total{mode="image_to_image",outcome="upstream_status"} 1
# HELP %[1]s_image_upstream_responses_total Upstream image API responses by status code
# TYPE %[1]s_image_upstream_responses_total counter
%[1]s_image_upstream_responses_total{code="404"} 1
`, ns)
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		ns+"_image_generations_total", ns+"_image_upstream_responses_total")
	assert.NoError(t, err)

	// 只有成功的调用记录图片大小；被拒绝的调用不记录耗时
	assert.Equal(t, 1, testutil.CollectAndCount(collector.imageBytes))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.generationDuration))
}

func TestCollector_UpstreamStarted(t *testing.T) {
	collector, _, _ := newTestCollector(t)

	done1 := collector.UpstreamStarted()
	done2 := collector.UpstreamStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.generationsActive))
	done1()
	done2()
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.generationsActive))
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector, _, _ := newTestCollector(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done := collector.UpstreamStarted()
			collector.RecordHTTPRequest("POST", "/v1/events", 200, 100*time.Millisecond, 1024, 2048)
			collector.RecordGeneration("text_to_image", OutcomeSuccess, 500*time.Millisecond, 4096)
			done()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10.0, testutil.ToFloat64(collector.generationsTotal.WithLabelValues("text_to_image", OutcomeSuccess)))
	assert.Equal(t, 10.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("POST", "/v1/events", "2xx")))
}

func TestCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ns := nextTestNamespace()
	NewCollector(ns, reg, nil)
	assert.Panics(t, func() { NewCollector(ns, reg, nil) })
}

func TestStatusCode(t *testing.T) {
	tests := map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 503: "5xx", 100: "unknown"}
	for code, want := range tests {
		assert.Equal(t, want, statusCode(code), "code %d", code)
	}
}
