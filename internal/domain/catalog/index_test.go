package catalog

import (
	"math"
	"testing"
)

func TestIndex_Search_Substring(t *testing.T) {
	idx := NewIndex(DefaultMedicines())

	got := idx.Search("para", 0)
	if len(got) == 0 {
		t.Fatal("expected matches")
	}
	if got[0].Name != "Paracetamol" || got[0].Score != 0 {
		t.Errorf("expected Paracetamol first with score 0, got %s %.2f", got[0].Name, got[0].Score)
	}
}

func TestIndex_Search_CaseInsensitive(t *testing.T) {
	idx := NewIndex(DefaultMedicines())

	got := idx.Search("AMOX", 0)
	if len(got) < 2 {
		t.Fatalf("expected both amoxicillin entries, got %d", len(got))
	}
	if got[0].Name != "Amoxicillin" || got[1].Name != "Amoxicillin + Clavulanic Acid" {
		t.Errorf("expected catalog order for equal scores, got %s, %s", got[0].Name, got[1].Name)
	}
}

func TestIndex_Search_Typo(t *testing.T) {
	idx := NewIndex(DefaultMedicines())

	got := idx.Search("paracetmol", 0)
	if len(got) == 0 || got[0].Name != "Paracetamol" {
		t.Fatalf("expected Paracetamol for a misspelling, got %v", got)
	}
	if got[0].Score <= 0 || got[0].Score > Threshold {
		t.Errorf("expected a fuzzy score within threshold, got %.2f", got[0].Score)
	}
}

func TestIndex_Search_ShortQuery(t *testing.T) {
	idx := NewIndex(DefaultMedicines())
	for _, q := range []string{"", "p", "  p  "} {
		if got := idx.Search(q, 0); got != nil {
			t.Errorf("%q: expected no results, got %d", q, len(got))
		}
	}
}

func TestIndex_Search_NoMatch(t *testing.T) {
	idx := NewIndex(DefaultMedicines())
	if got := idx.Search("qwxzkj", 0); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestIndex_Search_Limit(t *testing.T) {
	meds := make([]Medicine, 30)
	for i := range meds {
		meds[i] = Medicine{Name: "Vitamin"}
	}
	idx := NewIndex(meds)
	if got := idx.Search("vita", 0); len(got) != DefaultLimit {
		t.Errorf("expected %d results, got %d", DefaultLimit, len(got))
	}
	if got := idx.Search("vita", 5); len(got) != 5 {
		t.Errorf("expected 5 results, got %d", len(got))
	}
}

func TestIndex_SkipsBlankNames(t *testing.T) {
	idx := NewIndex([]Medicine{{Name: "  "}, {Name: "Cetirizine"}})
	if idx.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", idx.Len())
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		q, name string
		want    float64
	}{
		{"abc", "abc", 0},
		{"cet", "levocetirizine", 0},
		{"xyz", "abc", 1},
		{"abcd", "abxd", 0.25},
		{"longquery", "ab", 1},
	}
	for _, tt := range tests {
		if got := score(tt.q, tt.name); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("score(%q, %q) = %.2f, want %.2f", tt.q, tt.name, got, tt.want)
		}
	}
}
