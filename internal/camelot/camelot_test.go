package camelot

import "testing"

func TestFromKeyCMajorIsEightB(t *testing.T) {
	c := FromKey(C, Major)
	if c.String() != "8B" {
		t.Fatalf("C major = %s, want 8B", c.String())
	}
}

func TestFromKeyRelativeMinor(t *testing.T) {
	major := FromKey(C, Major)
	minor := FromKey(A, Minor)
	if major.Number != minor.Number || major.Letter == minor.Letter {
		t.Fatalf("A minor should be the relative minor of C major: got %s and %s", major, minor)
	}
	if minor.String() != "8A" {
		t.Fatalf("A minor = %s, want 8A", minor.String())
	}
}

func TestNeighborsWrapAround(t *testing.T) {
	n := Neighbors(Code{Number: 1, Letter: "A"})
	found12 := false
	for _, c := range n {
		if c.Number == 12 && c.Letter == "A" {
			found12 = true
		}
	}
	if !found12 {
		t.Fatalf("expected wheel wrap-around neighbor 12A, got %v", n)
	}
}

func TestCompatibleSetSize(t *testing.T) {
	set := CompatibleSet(Code{Number: 8, Letter: "B"})
	if len(set) != 4 {
		t.Fatalf("expected 4 compatible cells (self + 3 neighbors), got %d", len(set))
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"1A", "12B", "8A"} {
		c, ok := Parse(s)
		if !ok {
			t.Fatalf("Parse(%s) failed", s)
		}
		if c.String() != s {
			t.Fatalf("Parse(%s).String() = %s", s, c.String())
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, s := range []string{"", "13A", "8C", "A8"} {
		if _, ok := Parse(s); ok {
			t.Fatalf("Parse(%s) should have failed", s)
		}
	}
}

func TestCompatibleSymmetric(t *testing.T) {
	a := Code{Number: 8, Letter: "A"}
	b := Code{Number: 9, Letter: "A"}
	if Compatible(a, b) != Compatible(b, a) {
		t.Fatalf("compatibility should be symmetric for %s, %s", a, b)
	}
}
