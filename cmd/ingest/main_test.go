package main

import (
	"bytes"
	"strings"
	"testing"

	"ingest/internal/dataset"
	"ingest/internal/engine"
)

// TestWriteJSON verifies compact and indented output shapes.
func TestWriteJSON(t *testing.T) {
	t.Parallel()

	v := map[string]int{"rows": 3}

	var compact bytes.Buffer
	if err := writeJSON(&compact, v, false); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if got := strings.TrimSpace(compact.String()); got != `{"rows":3}` {
		t.Fatalf("compact = %q", got)
	}

	var pretty bytes.Buffer
	if err := writeJSON(&pretty, v, true); err != nil {
		t.Fatalf("writeJSON pretty: %v", err)
	}
	if !strings.Contains(pretty.String(), "\n  \"rows\": 3") {
		t.Fatalf("pretty = %q", pretty.String())
	}
}

// TestDatasetOutputShape runs the pipeline the way main does and checks
// the emitted dataset JSON carries typed cells.
func TestDatasetOutputShape(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.DefaultConfig(), nil, nil)
	ds, err := eng.Upload([]byte("name,age\nAlice,30\n"), "people.csv")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := ds.SelectSheet(dataset.CombinedView); err != nil {
		t.Fatalf("SelectSheet: %v", err)
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, ds, false); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"age":30`) {
		t.Fatalf("numeric cell not in natural JSON shape: %s", out)
	}
	if !strings.Contains(out, `"name":"Alice"`) {
		t.Fatalf("string cell missing: %s", out)
	}
}
