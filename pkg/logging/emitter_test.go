package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type captureSink struct {
	mu     sync.Mutex
	events []*Event
}

func (s *captureSink) Write(e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) Close() error { return nil }

func TestEmitterStampsMetadata(t *testing.T) {
	sink := &captureSink{}
	e := NewEmitter(EmitterConfig{RunID: "run-1"}, sink)

	err := e.Emit(EventNamespaceCreated, "namespace created for pkg.x", "namespace", nil, &NamespaceData{Owner: "pkg.x", Roots: 3})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.RunID != "run-1" || ev.EventType != EventNamespaceCreated || ev.Component != "namespace" {
		t.Errorf("metadata not stamped: %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	var data NamespaceData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if data.Owner != "pkg.x" || data.Roots != 3 {
		t.Errorf("payload mangled: %+v", data)
	}
}

func TestJSONLWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	w, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatalf("NewJSONLWriter failed: %v", err)
	}

	e := NewEmitter(EmitterConfig{RunID: "run-2"}, w)
	_ = e.Emit(EventHookInstalled, "hook installed", "hookreg", nil, &HookData{Target: "a.B(c)", Priority: 5})
	_ = e.Emit(EventHookRemoved, "hook removed", "hookreg", nil, &HookData{Target: "a.B(c)"})
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %d not valid JSON: %v", lines+1, err)
		}
		if ev.RunID != "run-2" {
			t.Errorf("line %d run id = %q", lines+1, ev.RunID)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("expected 2 JSONL lines, got %d", lines)
	}
}
