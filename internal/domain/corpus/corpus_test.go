package corpus

import "testing"

func TestNew_Depth(t *testing.T) {
	tests := []struct {
		name   string
		levels []string
		want   int
	}{
		{"one level", []string{"poem"}, 1},
		{"two levels with sentinel", []string{"book", "chapter", LevelAbsent}, 2},
		{"two levels with empty", []string{"book", "chapter", ""}, 2},
		{"three levels", []string{"book", "chapter", "section"}, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New("c1", "urn:cts:latinLit:phi0448.phi001.perseus-lat2", "", "", tc.levels...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c.Depth(); got != tc.want {
				t.Errorf("Depth() = %d, want %d", got, tc.want)
			}
			if got := len(c.Levels()); got != tc.want {
				t.Errorf("len(Levels()) = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		urn    string
		levels []string
	}{
		{"empty id", "", "urn:cts:x:y", []string{"book"}},
		{"empty urn", "c1", "  ", []string{"book"}},
		{"trailing colon", "c1", "urn:cts:x:y:", []string{"book"}},
		{"no levels", "c1", "urn:cts:x:y", nil},
		{"gap in levels", "c1", "urn:cts:x:y", []string{"book", LevelAbsent, "section"}},
		{"too many levels", "c1", "urn:cts:x:y", []string{"a", "b", "c", "d"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.id, tc.urn, "", "", tc.levels...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLevel_OutOfRange(t *testing.T) {
	c, err := New("c1", "urn:cts:x:y", "Title", "Author", "book", "chapter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Level(1) != "chapter" {
		t.Errorf("Level(1) = %q", c.Level(1))
	}
	if c.Level(2) != LevelAbsent || c.Level(-1) != LevelAbsent || c.Level(7) != LevelAbsent {
		t.Error("expected LevelAbsent for unused or out-of-range depths")
	}
	if c.Title() != "Title" || c.Author() != "Author" {
		t.Errorf("unexpected title/author: %q/%q", c.Title(), c.Author())
	}
}
