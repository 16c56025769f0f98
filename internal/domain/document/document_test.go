package document

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshal_OmitsAbsentFields(t *testing.T) {
	d := Document{
		ID:     "1700000000000",
		Title:  "T",
		Type:   "memo",
		Status: StatusDraft,
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, k := range []string{"fileKey", "fileName", "department", "categories", "endDate"} {
		if _, ok := m[k]; ok {
			t.Errorf("absent field %q present in stored JSON", k)
		}
	}
	if m["status"] != "draft" {
		t.Errorf("status = %v, want draft", m["status"])
	}
}

func TestUnmarshal_NormalizesNumbers(t *testing.T) {
	raw := `{"id":"1","title":"T","pageCount":3,"weight":3.5,"nested":{"size":42},"scores":[1,2.5]}`

	var d Document
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, ok := d.Extra["pageCount"].(int64); !ok || got != 3 {
		t.Errorf("pageCount = %#v, want int64(3)", d.Extra["pageCount"])
	}
	if got, ok := d.Extra["weight"].(float64); !ok || got != 3.5 {
		t.Errorf("weight = %#v, want float64(3.5)", d.Extra["weight"])
	}
	nested, ok := d.Extra["nested"].(map[string]any)
	if !ok {
		t.Fatalf("nested = %#v, want map", d.Extra["nested"])
	}
	if got, ok := nested["size"].(int64); !ok || got != 42 {
		t.Errorf("nested.size = %#v, want int64(42)", nested["size"])
	}
	scores, ok := d.Extra["scores"].([]any)
	if !ok || len(scores) != 2 {
		t.Fatalf("scores = %#v", d.Extra["scores"])
	}
	if scores[0] != int64(1) || scores[1] != float64(2.5) {
		t.Errorf("scores = %#v, want [int64(1), float64(2.5)]", scores)
	}
}

func TestRoundTrip_KeepsExtraAttributes(t *testing.T) {
	raw := `{"id":"9","title":"T","revision":7}`

	var d Document
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"revision":7`) {
		t.Errorf("extra attribute lost: %s", out)
	}
}

func TestPatch_AppliesOnlyNamedFields(t *testing.T) {
	d := Document{ID: "1", Title: "old", Department: "sales", Status: StatusDraft}
	title := "new"
	Patch{Title: &title}.Apply(&d)

	if d.Title != "new" {
		t.Errorf("title = %q, want new", d.Title)
	}
	if d.Department != "sales" {
		t.Errorf("department changed: %q", d.Department)
	}
	if d.Status != StatusDraft {
		t.Errorf("status changed: %q", d.Status)
	}
}

func TestPatch_DeletedStatusIsTerminal(t *testing.T) {
	d := Document{ID: "1", Status: StatusDeleted}
	published := StatusPublished
	Patch{Status: &published}.Apply(&d)
	if d.Status != StatusDeleted {
		t.Errorf("status = %q, want deleted to stay terminal", d.Status)
	}

	deleted := StatusDeleted
	Patch{Status: &deleted}.Apply(&d)
	if d.Status != StatusDeleted {
		t.Errorf("repeated soft delete: status = %q", d.Status)
	}
}
