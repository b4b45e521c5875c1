package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, reg *prom.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func counterValue(f *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range f.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestPrometheus_Records(t *testing.T) {
	reg := prom.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.ObserveChannel("vector", OutcomeOK, 0.004)
	p.ObserveChannel("vector", OutcomeOK, 0.006)
	p.ObserveChannel("graph", OutcomeTimeout, 0.03)
	p.IncStrategy("graph-reasoning")
	p.ObserveAnswer(0.02)
	p.IncToolCall("answer", true)

	channels := family(t, reg, "hybridkb_channel_searches_total")
	assert.Equal(t, 2.0, counterValue(channels, map[string]string{"channel": "vector", "outcome": OutcomeOK}))
	assert.Equal(t, 1.0, counterValue(channels, map[string]string{"channel": "graph", "outcome": OutcomeTimeout}))

	strategies := family(t, reg, "hybridkb_responses_total")
	assert.Equal(t, 1.0, counterValue(strategies, map[string]string{"strategy": "graph-reasoning"}))

	tools := family(t, reg, "hybridkb_tool_calls_total")
	assert.Equal(t, 1.0, counterValue(tools, map[string]string{"tool": "answer", "success": "true"}))

	answers := family(t, reg, "hybridkb_answer_seconds")
	require.Len(t, answers.GetMetric(), 1)
	assert.Equal(t, uint64(1), answers.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestPrometheus_DoubleRegistration(t *testing.T) {
	reg := prom.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)
	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	reg := prom.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)
	p.IncStrategy("fallback")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.ObserveChannel("vector", OutcomeEmpty, 0)
	r.IncStrategy("x")
	r.ObserveAnswer(0)
	r.IncToolCall("answer", false)
}
