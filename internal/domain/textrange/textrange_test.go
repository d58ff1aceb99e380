package textrange

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/ctsrange/internal/domain"
)

func TestTrim(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{"all empty", []string{"", "", ""}, []string{}, false},
		{"trailing empties", []string{"1", "2", ""}, []string{"1", "2"}, false},
		{"leading empty", []string{"", "3"}, []string{"3"}, false},
		{"whitespace", []string{" 1 ", "\t", ""}, []string{"1"}, false},
		{"interior empty", []string{"1", "", "3"}, nil, true},
		{"nil", nil, []string{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Trim(tc.in)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidRange) {
					t.Fatalf("expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Trim(%q) = %q, want %q", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("Trim(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestNew_TooManyLabels(t *testing.T) {
	if _, err := New([]string{"1", "2", "3", "4"}, []string{"1"}); !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestURN(t *testing.T) {
	r, err := New([]string{"1", "praef"}, []string{"2", "3", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := r.URN("urn:cts:latinLit:phi0448.phi001.perseus-lat2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "urn:cts:latinLit:phi0448.phi001.perseus-lat2:1.praef-2.3"
	if got != want {
		t.Errorf("URN() = %q, want %q", got, want)
	}

	empty, _ := New(nil, []string{"1"})
	if _, err := empty.URN("urn:cts:x:y"); !errors.Is(err, domain.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for empty start, got %v", err)
	}
}

func TestParseURN(t *testing.T) {
	tests := []struct {
		in        string
		wantBase  string
		wantStart [3]string
		wantEnd   [3]string
	}{
		{
			"urn:cts:latinLit:phi0448.phi001.perseus-lat2:1.1-1.7",
			"urn:cts:latinLit:phi0448.phi001.perseus-lat2",
			[3]string{"1", "1", ""},
			[3]string{"1", "7", ""},
		},
		{
			"urn:cts:greekLit:tlg0012.tlg001:3",
			"urn:cts:greekLit:tlg0012.tlg001",
			[3]string{"3", "", ""},
			[3]string{"3", "", ""},
		},
		{
			"  urn:cts:latinLit:phi0474.phi013.perseus-lat1:praef.1.2-4.5.6 ",
			"urn:cts:latinLit:phi0474.phi013.perseus-lat1",
			[3]string{"praef", "1", "2"},
			[3]string{"4", "5", "6"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			p, err := ParseURN(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Base != tc.wantBase {
				t.Errorf("Base = %q, want %q", p.Base, tc.wantBase)
			}
			if p.Range.Start != tc.wantStart {
				t.Errorf("Start = %q, want %q", p.Range.Start, tc.wantStart)
			}
			if p.Range.End != tc.wantEnd {
				t.Errorf("End = %q, want %q", p.Range.End, tc.wantEnd)
			}
		})
	}
}

func TestParseURN_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"urn:cts:latinLit:phi0448.phi001",
		"urn:isbn:12345:1",
		"urn:cts:latinLit:phi0448:1.2.3.4",
		"urn:cts:latinLit:phi0448:1-",
	} {
		if _, err := ParseURN(in); !errors.Is(err, domain.ErrInvalidURN) {
			t.Errorf("ParseURN(%q): expected ErrInvalidURN, got %v", in, err)
		}
	}
}
