package assistant

import (
	"testing"

	"github.com/google/uuid"

	"github.com/medloop/practice-assistant/internal/roster"
)

func testPatients() []roster.Patient {
	return []roster.Patient{
		{ID: uuid.New(), FirstName: "Omar", LastName: "Younus"},
		{ID: uuid.New(), FirstName: "John", LastName: "Smith"},
		{ID: uuid.New(), FirstName: "Maria", LastName: "Garcia"},
	}
}

func TestResolvePatientExact(t *testing.T) {
	p, ok := ResolvePatient("Omar Younus", testPatients())
	if !ok || p.LastName != "Younus" {
		t.Fatalf("ResolvePatient = %+v (%v), want Younus", p, ok)
	}
}

func TestResolvePatientPartial(t *testing.T) {
	patients := testPatients()

	p, ok := ResolvePatient("Younus", patients)
	if !ok || p.LastName != "Younus" {
		t.Errorf("last name only = %+v (%v), want Younus", p, ok)
	}

	p, ok = ResolvePatient("Omar", patients)
	if !ok || p.FirstName != "Omar" {
		t.Errorf("first name only = %+v (%v), want Omar", p, ok)
	}
}

// The misspelling "Yunas" must still land on Younus.
func TestResolvePatientSpellingVariant(t *testing.T) {
	tests := []string{"Omar Yunas", "Omar Younis", "omar yunus"}
	for _, name := range tests {
		p, ok := ResolvePatient(name, testPatients())
		if !ok || p.LastName != "Younus" {
			t.Errorf("ResolvePatient(%q) = %+v (%v), want Younus", name, p, ok)
		}
	}
}

func TestResolvePatientUnresolved(t *testing.T) {
	for _, name := range []string{"Jane Jones", "Zed Qux", ""} {
		if p, ok := ResolvePatient(name, testPatients()); ok {
			t.Errorf("ResolvePatient(%q) = %+v, want unresolved", name, p)
		}
	}
}

// A close name must not pull in the wrong person: "John Smyth" may match
// Smith, but "Maria Smith" must not match Garcia.
func TestResolvePatientNoCrossMatch(t *testing.T) {
	p, ok := ResolvePatient("Maria Smith", testPatients())
	if ok {
		t.Errorf("ResolvePatient(Maria Smith) = %s %s, want unresolved", p.FirstName, p.LastName)
	}
}

// Resolution is deterministic: with two plausible candidates, roster
// order decides.
func TestResolvePatientFirstMatchWins(t *testing.T) {
	patients := []roster.Patient{
		{ID: uuid.New(), FirstName: "Sarah", LastName: "Adams"},
		{ID: uuid.New(), FirstName: "Sara", LastName: "Bennett"},
	}
	for i := 0; i < 10; i++ {
		p, ok := ResolvePatient("Sarah", patients)
		if !ok || p.LastName != "Adams" {
			t.Fatalf("ResolvePatient(Sarah) = %+v (%v), want Adams every time", p, ok)
		}
	}
}

func TestResolveProvider(t *testing.T) {
	providers := []roster.Provider{
		{ID: uuid.New(), FirstName: "Sarah", LastName: "Adams", Department: "cardiology", Role: "doctor"},
		{ID: uuid.New(), FirstName: "James", LastName: "Lin", Department: "dermatology", Role: "doctor"},
	}

	p, ok := ResolveProvider("Adams", providers)
	if !ok || p.LastName != "Adams" {
		t.Errorf("ResolveProvider(Adams) = %+v (%v)", p, ok)
	}

	if p, ok := ResolveProvider("Nguyen", providers); ok {
		t.Errorf("ResolveProvider(Nguyen) = %+v, want unresolved", p)
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"younus", "younus", 1.0, 1.0},
		{"younus", "yunas", 0.9, 0.9},   // phonetic alias group
		{"ann", "annabelle", 0.8, 0.8},  // containment
		{"jessica", "jesse", 0.7, 0.7},  // shared prefix
		{"smith", "smyth", 0.75, 0.85},  // one edit in five
		{"adams", "nguyen", 0.0, 0.35},
	}
	for _, tt := range tests {
		got := nameSimilarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("nameSimilarity(%q, %q) = %.2f, want in [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
