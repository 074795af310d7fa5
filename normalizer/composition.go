package normalizer

import (
	"regexp"
	"strconv"
	"strings"
)

var percentRe = regexp.MustCompile(`\d+`)

// Fibers holds the tracked fiber fractions of a composition, each in [0,1]
type Fibers struct {
	Cotton     float64
	Polyester  float64
	Elastane   float64
	Elasterell float64
}

// Max returns the per-fiber maximum of f and o
func (f Fibers) Max(o Fibers) Fibers {
	return Fibers{
		Cotton:     max(f.Cotton, o.Cotton),
		Polyester:  max(f.Polyester, o.Polyester),
		Elastane:   max(f.Elastane, o.Elastane),
		Elasterell: max(f.Elasterell, o.Elasterell),
	}
}

// fiberScan names a fiber and the comma-separated positions it is looked
// for in. The positions follow the label orderings the showroom uses.
type fiberScan struct {
	name      string
	positions []int
	set       func(*Fibers, float64)
}

var trackedFibers = []fiberScan{
	{"Cotton", []int{0, 1}, func(f *Fibers, v float64) { f.Cotton = v }},
	{"Polyester", []int{0, 1}, func(f *Fibers, v float64) { f.Polyester = v }},
	{"Elastane", []int{1, 2, 3}, func(f *Fibers, v float64) { f.Elastane = v }},
	{"Elasterell", []int{1}, func(f *Fibers, v float64) { f.Elasterell = v }},
}

// ParseComposition reads "<Fabric> <percent>%" segments such as
// "Cotton 80%, Elastane 20%". Fiber names match case-sensitively; the first
// scanned position that names the fiber and carries a percentage wins.
// Missing fibers are 0. matched reports whether any tracked fiber was found.
func ParseComposition(composition string) (fibers Fibers, matched bool) {
	if strings.TrimSpace(composition) == "" {
		return Fibers{}, false
	}

	segments := strings.Split(composition, ",")
	for _, fiber := range trackedFibers {
		for _, pos := range fiber.positions {
			if pos >= len(segments) || !strings.Contains(segments[pos], fiber.name) {
				continue
			}
			v, ok := fraction(segments[pos])
			if !ok {
				continue
			}
			fiber.set(&fibers, v)
			matched = true
			break
		}
	}

	return fibers, matched
}

func fraction(segment string) (float64, bool) {
	digits := percentRe.FindString(segment)
	if digits == "" {
		return 0, false
	}
	pct, err := strconv.Atoi(digits)
	if err != nil || pct > 100 {
		return 0, false
	}
	return float64(pct) / 100, true
}
