package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder("")

	r.RecordSubmission("accepted")
	r.RecordSubmission("accepted")
	r.RecordSubmission("rejected")
	r.RecordPollQuery("pending")
	r.RecordOutcome("confirmed")
	r.RecordOutcome("timed_out_success")

	require.Equal(t, 2.0, testutil.ToFloat64(r.submissions.WithLabelValues("accepted")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.submissions.WithLabelValues("rejected")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.queries.WithLabelValues("pending")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("confirmed")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("timed_out_success")))
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a := NewRecorder("")
	b := NewRecorder("")

	a.RecordOutcome("confirmed")

	require.Equal(t, 0.0, testutil.ToFloat64(b.outcomes.WithLabelValues("confirmed")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder("pickup")
	r.RecordOutcome("timed_out_success")
	path := filepath.Join(t.TempDir(), "pickup.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `pickup_settlements_total{outcome="timed_out_success"} 1`))
}
