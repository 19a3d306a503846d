package sortkey

import "testing"

func TestIsValid(t *testing.T) {
	for _, k := range []Key{Distance, Rating, Newest} {
		if !k.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", k)
		}
	}
	for _, k := range []Key{"", "relevance", "DISTANCE"} {
		if k.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", k)
		}
	}
}

func TestParse(t *testing.T) {
	k, err := Parse("")
	if err != nil || k != Distance {
		t.Errorf("Parse(\"\") = %q, %v; want distance", k, err)
	}
	k, err = Parse("newest")
	if err != nil || k != Newest {
		t.Errorf("Parse(newest) = %q, %v", k, err)
	}
	if _, err := Parse("popularity"); err == nil {
		t.Error("expected error for unknown key")
	}
}
