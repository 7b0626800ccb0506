package modules

import (
	"testing"

	"modtrack/internal/walk"
)

func newTestLister(t *testing.T) *walk.Lister {
	t.Helper()
	l, err := NewLister(16, walk.DefaultIgnore)
	if err != nil {
		t.Fatal(err)
	}
	return l
}
