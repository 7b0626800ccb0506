package jsonutil

import (
	"strings"
	"testing"
)

type doc struct {
	Zeta  string         `json:"zeta"`
	Alpha int            `json:"alpha"`
	Inner map[string]any `json:"inner"`
	Big   float64        `json:"big"`
}

func TestSortedCompact(t *testing.T) {
	got, err := SortedCompact(doc{
		Zeta:  "<b>",
		Alpha: 1,
		Inner: map[string]any{"y": true, "b": []int{2, 1}},
		Big:   12345678901,
	})
	if err != nil {
		t.Fatalf("SortedCompact: %v", err)
	}
	want := `{"alpha":1,"big":12345678901,"inner":{"b":[2,1],"y":true},"zeta":"<b>"}`
	if string(got) != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestSortedIndent(t *testing.T) {
	got, err := Sorted(map[string]int{"b": 2, "a": 1}, "  ")
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": 1,\n  \"b\": 2\n}"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestForScriptEscapes(t *testing.T) {
	got, err := ForScript(map[string]string{"name": "</script><script>"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(got), "</script>") {
		t.Errorf("ForScript left a closing tag: %s", got)
	}
	if !strings.Contains(string(got), `\u003c/script\u003e`) {
		t.Errorf("ForScript = %s", got)
	}
}

func TestSortedPropagatesErrors(t *testing.T) {
	if _, err := SortedCompact(map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("expected error for unsupported type")
	}
}
