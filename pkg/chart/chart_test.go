package chart

import "testing"

func sliceSum(data []Slice) int {
	total := 0
	for _, s := range data {
		total += s.Value
	}
	return total
}

func TestDefaultSumsTo100(t *testing.T) {
	if got := sliceSum(Default()); got != 100 {
		t.Errorf("expected default slices to sum to 100, got %d", got)
	}
}

func TestGenerateSumsTo100(t *testing.T) {
	names := []string{
		"deck.pdf",
		"Acme_Deck.pdf",
		"a",
		"",
		"my-startup-pitch-final-FINAL-v3.pdf",
		"ünïcödé déck.pdf",
		"1234567890.pdf",
	}
	for _, name := range names {
		if got := sliceSum(Generate(name)); got != 100 {
			t.Errorf("Generate(%q): expected sum 100, got %d", name, got)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate("Acme_Deck.pdf")
	b := Generate("Acme_Deck.pdf")

	for i := range a {
		if a[i].Value != b[i].Value {
			t.Errorf("slice %d: expected %d, got %d", i, a[i].Value, b[i].Value)
		}
	}
}

func TestGenerateVariesWithName(t *testing.T) {
	a := Generate("deck-one.pdf")
	b := Generate("a completely different name.pdf")

	same := true
	for i := range a {
		if a[i].Value != b[i].Value {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different file names to produce different charts")
	}
}

func TestGenerateKeepsSliceOrder(t *testing.T) {
	data := Generate("deck.pdf")

	if len(data) != 5 {
		t.Fatalf("expected 5 slices, got %d", len(data))
	}
	if data[0].Name != "Unicorn Potential" {
		t.Errorf("expected first slice 'Unicorn Potential', got %q", data[0].Name)
	}
	for _, s := range data {
		if s.Color == "" || s.Description == "" {
			t.Errorf("slice %q missing color or description", s.Name)
		}
	}
}

func TestGenerateValuesPositive(t *testing.T) {
	for _, name := range []string{"", "x", "zzzzzzzzzzzzzzzz.pdf"} {
		for i, s := range Generate(name) {
			if s.Value <= 0 {
				t.Errorf("Generate(%q): slice %d has non-positive value %d", name, i, s.Value)
			}
		}
	}
}

func TestNormalizeZeroTotalFallsBack(t *testing.T) {
	data := []Slice{{Name: "a"}, {Name: "b"}}

	out := Normalize(data)
	if got := sliceSum(out); got != 100 {
		t.Errorf("expected fallback to sum to 100, got %d", got)
	}
	if out[0].Name != "Unicorn Potential" {
		t.Errorf("expected default slices on zero total, got %q", out[0].Name)
	}
}

func TestNormalizeRemainderGoesToLargest(t *testing.T) {
	data := []Slice{
		{Name: "a", Value: 1},
		{Name: "b", Value: 1},
		{Name: "c", Value: 1},
	}

	out := Normalize(data)
	if got := sliceSum(out); got != 100 {
		t.Errorf("expected sum 100, got %d", got)
	}
}
