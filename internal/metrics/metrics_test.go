package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest("chat", OutcomeSuccess, time.Second)
	r.ObserveRequest("chat", OutcomeSuccess, time.Second)
	r.ObserveRequest("ask", OutcomeCanceled, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("chat", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("ask", OutcomeCanceled)))
}

func TestObserveUploadCountsBytesOnSuccess(t *testing.T) {
	r := NewRecorder()

	r.ObserveUpload(OutcomeSuccess, 100)
	r.ObserveUpload(OutcomeRejected, 1_000_000)

	assert.Equal(t, 100.0, testutil.ToFloat64(r.uploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.uploads.WithLabelValues(OutcomeRejected)))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeError, Outcome(errors.New("x")))
}
