package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWrite_CompactAndPretty(t *testing.T) {
	t.Parallel()

	v := map[string]any{"data": map[string]any{"board": "KITCHEN"}}

	var compact bytes.Buffer
	if err := Write(&compact, v, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := compact.String(); got != "{\"data\":{\"board\":\"KITCHEN\"}}\n" {
		t.Fatalf("compact: got %q", got)
	}

	var pretty bytes.Buffer
	if err := Write(&pretty, v, true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(pretty.String(), "\n  \"data\": {") {
		t.Fatalf("pretty: got %q", pretty.String())
	}
}

func TestLineWriter_OneValuePerLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lw := NewLineWriter(&buf)
	for _, footer := range []string{"Connecting…", `Connected to "A" • 1 showing`} {
		if err := lw.Write(map[string]string{"footer": footer}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines; got %d: %q", len(lines), buf.String())
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["footer"] != `Connected to "A" • 1 showing` {
		t.Fatalf("unexpected footer %q", got["footer"])
	}
}
