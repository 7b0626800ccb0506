package complexity

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		max  int
		want Bucket
	}{
		{0, BucketUnknown},
		{-1, BucketUnknown},
		{1, BucketLow},
		{LowMax, BucketLow},
		{LowMax + 1, BucketMedium},
		{MediumMax, BucketMedium},
		{MediumMax + 1, BucketHigh},
		{75, BucketHigh},
	}
	for _, tt := range tests {
		if got := Classify(tt.max); got != tt.want {
			t.Errorf("Classify(%d) = %q, want %q", tt.max, got, tt.want)
		}
	}
}

func TestLanguageFromExtension(t *testing.T) {
	tests := map[string]Language{
		".go":    LangGo,
		".GO":    LangGo,
		".jsx":   LangJavaScript,
		".tsx":   LangTSX,
		".mts":   LangTypeScript,
		".py":    LangPython,
		".kts":   LangKotlin,
		".swift": LangSwift,
	}
	for ext, want := range tests {
		got, ok := LanguageFromExtension(ext)
		if !ok || got != want {
			t.Errorf("LanguageFromExtension(%q) = %q, %v; want %q", ext, got, ok, want)
		}
	}
	for _, ext := range []string{".md", ".m", ""} {
		if _, ok := LanguageFromExtension(ext); ok {
			t.Errorf("LanguageFromExtension(%q) should be unsupported", ext)
		}
	}
}

func TestAggregate(t *testing.T) {
	fc := FileComplexity{
		Functions:     []Function{{Cyclomatic: 3}, {Cyclomatic: 7}, {Cyclomatic: 1}},
		MaxCyclomatic: 99,
	}
	fc.Aggregate()
	if fc.MaxCyclomatic != 7 || fc.TotalCyclomatic != 11 {
		t.Errorf("Aggregate = max %d total %d, want 7 and 11", fc.MaxCyclomatic, fc.TotalCyclomatic)
	}
}
