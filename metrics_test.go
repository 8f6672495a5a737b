package edgert

import "testing"

func TestMetrics_EmptyBeforeAnyJobs(t *testing.T) {
	e := New(nil)
	if err := e.AddThread("idle", int64(1), 0, 0, 10, 0, 0); err != nil {
		t.Fatalf("AddThread failed: %v", err)
	}
	m, err := e.ThreadMetric("idle")
	if err != nil {
		t.Fatalf("ThreadMetric failed: %v", err)
	}
	if m.Count != 0 || m.MeanNs() != 0 {
		t.Fatalf("expected zeroed metrics before any job ran, got %+v", m)
	}
}

func TestMetrics_UnknownThreadFails(t *testing.T) {
	e := New(nil)
	if _, err := e.ThreadMetric("ghost"); !IsCode(err, CodeNotFound) {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestMetrics_ListsAllThreadsInRegistrationOrder(t *testing.T) {
	e := New(nil)
	for _, name := range []string{"a", "b", "c"} {
		if err := e.AddThread(name, int64(1), 0, 0, 10, 0, 0); err != nil {
			t.Fatalf("AddThread %s failed: %v", name, err)
		}
	}
	metrics := e.Metrics()
	if len(metrics) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(metrics))
	}
	for i, name := range []string{"a", "b", "c"} {
		if metrics[i].Name != name {
			t.Errorf("expected entry %d to be %s, got %s", i, name, metrics[i].Name)
		}
	}
}
