package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordRequest("get", OutcomeOK, 12*time.Millisecond)
	RecordRequest("put", OutcomeServerError, 24*time.Millisecond)
	RecordListKeysChunk()
}

func TestRecordRequestCounts(t *testing.T) {
	before := testutil.ToFloat64(requests.WithLabelValues("delete", OutcomeOK))
	RecordRequest("delete", OutcomeOK, 5*time.Millisecond)
	after := testutil.ToFloat64(requests.WithLabelValues("delete", OutcomeOK))
	if after != before+1 {
		t.Fatalf("counter did not advance: before=%v after=%v", before, after)
	}
}

func TestRecordRequestSplitsOutcomes(t *testing.T) {
	before := testutil.ToFloat64(requests.WithLabelValues("query", OutcomeTransportError))
	RecordRequest("query", OutcomeTransportError, time.Millisecond)
	after := testutil.ToFloat64(requests.WithLabelValues("query", OutcomeTransportError))
	if after != before+1 {
		t.Fatalf("transport_error outcome not counted: before=%v after=%v", before, after)
	}
	if ok := testutil.ToFloat64(requests.WithLabelValues("query", OutcomeOK)); ok != 0 {
		t.Fatalf("ok outcome leaked: %v", ok)
	}
}

func TestRecordListKeysChunk(t *testing.T) {
	before := testutil.ToFloat64(listKeysChunks)
	RecordListKeysChunk()
	RecordListKeysChunk()
	after := testutil.ToFloat64(listKeysChunks)
	if after != before+2 {
		t.Fatalf("chunk counter did not advance: before=%v after=%v", before, after)
	}
}
