package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordRequest("GET", "/health", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordUpload(t *testing.T) {
	okBefore := testutil.ToFloat64(MediaUploads.WithLabelValues("inline", "ok"))
	errBefore := testutil.ToFloat64(MediaUploads.WithLabelValues("inline", "error"))

	RecordUpload("inline", nil)
	RecordUpload("inline", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(MediaUploads.WithLabelValues("inline", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(MediaUploads.WithLabelValues("inline", "error")))
}
