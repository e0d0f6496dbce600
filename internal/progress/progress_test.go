package progress

import "testing"

func TestChannelSink(t *testing.T) {
	sink := NewChannelSink(4)
	sink.Publish(Event{TaskID: "a", Rate: 50, Path: "/out"})
	sink.Publish(Event{TaskID: "a", Rate: FailureRate})
	sink.Close()

	var got []Event
	for ev := range sink.Events() {
		got = append(got, ev)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Rate != 50 || got[0].Path != "/out" {
		t.Errorf("unexpected first event: %+v", got[0])
	}
	if got[1].Rate != FailureRate {
		t.Errorf("expected failure sentinel, got %+v", got[1])
	}
}

func TestFuncSink(t *testing.T) {
	var seen []Event
	sink := Func(func(e Event) { seen = append(seen, e) })
	sink.Publish(Event{TaskID: "x", Rate: 100})
	if len(seen) != 1 || seen[0].TaskID != "x" {
		t.Errorf("unexpected events: %+v", seen)
	}
}
