package ga

import (
	"sort"

	"github.com/stitts-dev/lineup-ga/internal/pool"
	"github.com/stitts-dev/lineup-ga/internal/pospool"
)

// Validators run in this fixed order (spec.md §4.4): salary cap, intra-lineup
// duplicates, position structure, global duplicates. Every validator filters
// rows — it never repairs a lineup, per spec.md §9 "validators are filters,
// not fixers".
type Validator struct {
	pl            *pool.Pool
	layout        SlotLayout
	salaryCap     int
	flexPositions map[string]bool
	nonFlexSlots  []int // slot indices whose canonical position is fixed (non-FLEX)
	flexSlots     []int // slot indices that are FLEX
}

// NewValidator precomputes the slot classification used by the optimized
// position-structure check (spec.md §4.4.3: "An optimized path relies on
// slot invariants being preserved by operators and only checks FLEX").
func NewValidator(pl *pool.Pool, layout SlotLayout, salaryCap int, flexPositions []string) *Validator {
	flexSet := make(map[string]bool, len(flexPositions))
	for _, p := range flexPositions {
		flexSet[p] = true
	}
	v := &Validator{pl: pl, layout: layout, salaryCap: salaryCap, flexPositions: flexSet}
	for i, slot := range layout.Slots {
		if slot == pospool.FlexName {
			v.flexSlots = append(v.flexSlots, i)
		} else {
			v.nonFlexSlots = append(v.nonFlexSlots, i)
		}
	}
	return v
}

// Validate runs the full ordered pipeline and returns the surviving
// Population. The population may shrink; the generational loop is
// responsible for topping it back up (spec.md §4.7 step 7).
func (v *Validator) Validate(p *Population) *Population {
	p = v.salary(p)
	p = v.noIntraDuplicates(p)
	p = v.positionStructure(p)
	p = v.noGlobalDuplicates(p)
	return p
}

// ValidateOne reports whether a single lineup row clears salary cap,
// intra-lineup duplicate, and position-structure checks. Operators that
// mutate one lineup at a time (e.g. multilineup's single-swap path) use this
// instead of round-tripping through a one-row Population.
func (v *Validator) ValidateOne(row []int) bool {
	total := 0
	for _, id := range row {
		if id < 0 {
			return false
		}
		total += v.pl.Player(id).Salary
	}
	if total > v.salaryCap {
		return false
	}
	sorted := append([]int(nil), row...)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return false
		}
	}
	for _, c := range v.flexSlots {
		id := row[c]
		if id < 0 || !v.flexPositions[v.pl.Player(id).Position] {
			return false
		}
	}
	return true
}

func (v *Validator) salary(p *Population) *Population {
	var keep []int
	for r := 0; r < p.K(); r++ {
		row := p.Row(r)
		total := 0
		valid := true
		for _, id := range row {
			if id < 0 {
				valid = false
				break
			}
			total += v.pl.Player(id).Salary
		}
		if valid && total <= v.salaryCap {
			keep = append(keep, r)
		}
	}
	return p.Select(keep)
}

func (v *Validator) noIntraDuplicates(p *Population) *Population {
	var keep []int
	for r := 0; r < p.K(); r++ {
		row := p.Row(r)
		sorted := append([]int(nil), row...)
		sort.Ints(sorted)
		unique := true
		for i := 1; i < len(sorted); i++ {
			if sorted[i] == sorted[i-1] {
				unique = false
				break
			}
		}
		if unique {
			keep = append(keep, r)
		}
	}
	return p.Select(keep)
}

func (v *Validator) positionStructure(p *Population) *Population {
	if len(v.flexSlots) == 0 {
		return p // nothing to check beyond what operators already preserve
	}
	var keep []int
	for r := 0; r < p.K(); r++ {
		row := p.Row(r)
		ok := true
		for _, c := range v.flexSlots {
			id := row[c]
			if id < 0 || !v.flexPositions[v.pl.Player(id).Position] {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, r)
		}
	}
	return p.Select(keep)
}

func (v *Validator) noGlobalDuplicates(p *Population) *Population {
	seen := make(map[string]bool, p.K())
	var keep []int
	for r := 0; r < p.K(); r++ {
		row := p.Row(r)
		sorted := append([]int(nil), row...)
		sort.Ints(sorted)
		key := rowKey(sorted)
		if !seen[key] {
			seen[key] = true
			keep = append(keep, r)
		}
	}
	return p.Select(keep)
}

func rowKey(sorted []int) string {
	b := make([]byte, 0, len(sorted)*5)
	for _, id := range sorted {
		b = appendInt(b, id)
		b = append(b, ',')
	}
	return string(b)
}

func appendInt(b []byte, n int) []byte {
	if n < 0 {
		b = append(b, '-')
		n = -n
	}
	if n == 0 {
		return append(b, '0')
	}
	start := len(b)
	for n > 0 {
		b = append(b, byte('0'+n%10))
		n /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
