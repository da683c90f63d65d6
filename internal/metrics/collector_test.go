package metrics

import (
	"testing"
	"time"
)

func TestCollectorRecordRequest(t *testing.T) {
	c := NewCollector()
	c.RecordRequest(OpStatus, 10*time.Millisecond, false)
	c.RecordRequest(OpStatus, 30*time.Millisecond, true)
	c.RecordRequest(OpLogin, 5*time.Millisecond, false)

	snap := c.Snapshot()
	if len(snap.Operations) != 2 {
		t.Fatalf("got %d operations, want 2", len(snap.Operations))
	}
	if snap.Operations[0].Name != OpLogin {
		t.Errorf("operations not sorted: first = %q", snap.Operations[0].Name)
	}

	st := snap.Get(OpStatus)
	if st == nil {
		t.Fatal("missing status snapshot")
	}
	if st.Count != 2 || st.Failures != 1 {
		t.Errorf("count/failures = %d/%d, want 2/1", st.Count, st.Failures)
	}
	if st.MinTimeMs != 10 || st.MaxTimeMs != 30 {
		t.Errorf("min/max = %d/%d, want 10/30", st.MinTimeMs, st.MaxTimeMs)
	}
	if st.AvgTimeMs != 20 {
		t.Errorf("avg = %v, want 20", st.AvgTimeMs)
	}

	if snap.Get(OpUpload) != nil {
		t.Error("unexpected upload snapshot")
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordRequest(OpStatus, time.Second, false)
	if got := c.Snapshot(); len(got.Operations) != 0 {
		t.Errorf("nil collector snapshot = %+v", got)
	}
}
