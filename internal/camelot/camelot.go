// Package camelot implements the 24-cell Camelot wheel used to judge
// harmonic compatibility between musical keys.
package camelot

import "fmt"

// PitchClass indexes the twelve chromatic pitch classes, 0=C .. 11=B.
type PitchClass int

const (
	C PitchClass = iota
	Db
	D
	Eb
	E
	F
	Gb
	G
	Ab
	A
	Bb
	B
)

var pitchNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

func (p PitchClass) String() string { return pitchNames[((int(p)%12)+12)%12] }

// Mode is major or minor.
type Mode string

const (
	Major Mode = "major"
	Minor Mode = "minor"
)

// majorNumber[pc] is the Camelot wheel number (1-12) for the major key
// rooted at pitch class pc. minorNumber is the same for minor keys.
var majorNumber = [12]int{8, 3, 10, 5, 12, 7, 2, 9, 4, 11, 6, 1}
var minorNumber = [12]int{5, 12, 7, 2, 9, 4, 11, 6, 1, 8, 3, 10}

// Code is a single cell of the Camelot wheel, e.g. {8, "B"}.
type Code struct {
	Number int
	Letter string // "A" (minor) or "B" (major)
}

func (c Code) String() string { return fmt.Sprintf("%d%s", c.Number, c.Letter) }

// Zero reports whether c is the unset code.
func (c Code) Zero() bool { return c.Number == 0 }

// FromKey maps a tonic/mode pair onto its Camelot wheel cell.
func FromKey(tonic PitchClass, mode Mode) Code {
	pc := ((int(tonic) % 12) + 12) % 12
	if mode == Major {
		return Code{Number: majorNumber[pc], Letter: "B"}
	}
	return Code{Number: minorNumber[pc], Letter: "A"}
}

// Parse reads a Camelot string such as "8A" or "12B" into a Code.
func Parse(s string) (Code, bool) {
	if len(s) < 2 {
		return Code{}, false
	}
	letter := s[len(s)-1:]
	if letter != "A" && letter != "B" {
		return Code{}, false
	}
	numPart := s[:len(s)-1]
	num := 0
	for _, r := range numPart {
		if r < '0' || r > '9' {
			return Code{}, false
		}
		num = num*10 + int(r-'0')
	}
	if num < 1 || num > 12 {
		return Code{}, false
	}
	return Code{Number: num, Letter: letter}, true
}

func wrap(n int) int {
	n = ((n - 1) % 12 + 12) % 12
	return n + 1
}

// Neighbors returns the three wheel neighbors of c: one step
// anti-clockwise, one step clockwise, and the relative major/minor.
func Neighbors(c Code) []Code {
	other := "A"
	if c.Letter == "A" {
		other = "B"
	}
	return []Code{
		{Number: wrap(c.Number - 1), Letter: c.Letter},
		{Number: wrap(c.Number + 1), Letter: c.Letter},
		{Number: c.Number, Letter: other},
	}
}

// CompatibleSet returns c and its three wheel neighbors — the full
// "camelot_compatible" set from the data model.
func CompatibleSet(c Code) []Code {
	return append([]Code{c}, Neighbors(c)...)
}

// Compatible reports whether b is in a's compatible set.
func Compatible(a, b Code) bool {
	for _, n := range CompatibleSet(a) {
		if n == b {
			return true
		}
	}
	return false
}

// SameLetter reports whether a and b share a mode letter with different
// numbers, wheel neighbours included — the "same mode, different number"
// relation used by the transition scorer's harmonic score.
func SameLetter(a, b Code) bool {
	return a.Letter == b.Letter && a.Number != b.Number
}
