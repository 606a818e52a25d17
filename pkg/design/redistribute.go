package design

import (
	"math"
	"slices"
)

// Policy holds the constants of the percentage rebalancing rules.
type Policy struct {
	// DefaultShare is the percentage reserved for a newly added pane, and the
	// share assumed for a moved pane whose old constraint was not a percentage.
	DefaultShare int `toml:"default_share" json:"defaultShare"`
	// MoveShareCap caps the share a relocated pane keeps.
	MoveShareCap int `toml:"move_share_cap" json:"moveShareCap"`
	// MinShare is the smallest percentage a pane is shrunk or resized to.
	MinShare int `toml:"min_share" json:"minShare"`
}

// DefaultPolicy returns the standard rebalancing constants.
func DefaultPolicy() Policy {
	return Policy{DefaultShare: 20, MoveShareCap: 50, MinShare: 5}
}

// ValidateAndSetDefaults fills zero fields with defaults and checks ranges.
func (p *Policy) ValidateAndSetDefaults() error {
	def := DefaultPolicy()
	if p.DefaultShare == 0 {
		p.DefaultShare = def.DefaultShare
	}
	if p.MoveShareCap == 0 {
		p.MoveShareCap = def.MoveShareCap
	}
	if p.MinShare == 0 {
		p.MinShare = def.MinShare
	}
	switch {
	case p.DefaultShare < 1 || p.DefaultShare > 99:
		return PolicyError("default_share must be between 1 and 99")
	case p.MoveShareCap < 1 || p.MoveShareCap > 100:
		return PolicyError("move_share_cap must be between 1 and 100")
	case p.MinShare < 1 || p.MinShare > 50:
		return PolicyError("min_share must be between 1 and 50")
	}
	return nil
}

// PolicyError describes a rejected Policy value.
type PolicyError string

func (e PolicyError) Error() string { return "invalid policy: " + string(e) }

// maxPercentagePanes is the number of percentage siblings that can each keep
// at least MinShare while summing to 100.
func (p Policy) maxPercentagePanes() int {
	if p.MinShare <= 0 {
		return math.MaxInt
	}
	return 100 / p.MinShare
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func allPercentage(cs []Constraint) bool {
	for _, c := range cs {
		if !c.IsPercentage() {
			return false
		}
	}
	return true
}

func percentageSum(cs []Constraint) int {
	sum := 0
	for _, c := range cs {
		if c.IsPercentage() {
			sum += c.Value
		}
	}
	return sum
}

func percentageCount(cs []Constraint) int {
	n := 0
	for _, c := range cs {
		if c.IsPercentage() {
			n++
		}
	}
	return n
}

func lastPercentage(cs []Constraint) int {
	for i := len(cs) - 1; i >= 0; i-- {
		if cs[i].IsPercentage() {
			return i
		}
	}
	return -1
}

// shrinkForInsert scales every percentage by (100-share)/100, never below
// floor. It returns the scaled list and the share left over for a new entry,
// which is itself at least floor.
func shrinkForInsert(cs []Constraint, share, floor int) ([]Constraint, int) {
	out := slices.Clone(cs)
	ratio := float64(100-share) / 100
	total := 0
	for i, c := range out {
		if !c.IsPercentage() {
			continue
		}
		v := max(floor, roundHalfUp(float64(c.Value)*ratio))
		out[i].Value = v
		total += v
	}
	return out, max(floor, 100-total)
}

// expandAfterRemoval rescales the remaining percentages to sum to 100. The last
// percentage entry absorbs the rounding remainder. Lists without a positive
// percentage sum are returned unchanged.
func expandAfterRemoval(cs []Constraint, floor int) []Constraint {
	out := slices.Clone(cs)
	sum := percentageSum(out)
	last := lastPercentage(out)
	if sum <= 0 || last < 0 {
		return out
	}
	ratio := 100 / float64(sum)
	acc := 0
	for i, c := range out {
		if !c.IsPercentage() {
			continue
		}
		if i == last {
			out[i].Value = 100 - acc
			break
		}
		v := roundHalfUp(float64(c.Value) * ratio)
		out[i].Value = v
		acc += v
	}
	if out[last].Value < floor {
		out[last].Value = floor
	}
	return settle(out, floor)
}

// settle forces an all-percentage list to sum to exactly 100. A deficit goes to
// the last entry; an excess is taken from the back without pushing any entry
// below floor. Mixed lists are returned unchanged.
func settle(cs []Constraint, floor int) []Constraint {
	out := slices.Clone(cs)
	if len(out) == 0 || !allPercentage(out) {
		return out
	}
	diff := 100 - percentageSum(out)
	if diff > 0 {
		out[len(out)-1].Value += diff
		return out
	}
	for i := len(out) - 1; i >= 0 && diff < 0; i-- {
		room := out[i].Value - floor
		if room <= 0 {
			continue
		}
		take := min(room, -diff)
		out[i].Value -= take
		diff += take
	}
	return out
}

// absorbEdit rebalances an all-percentage list after entry i was set directly.
// The neighbouring entry (the next one, or the previous one for the last slot)
// takes up the difference. When that cannot keep everything in range the whole
// list is rescaled instead.
func absorbEdit(cs []Constraint, i, floor int) []Constraint {
	out := slices.Clone(cs)
	if len(out) == 1 {
		out[0].Value = 100
		return out
	}
	j := i + 1
	if j == len(out) {
		j = i - 1
	}
	rest := percentageSum(out) - out[i].Value - out[j].Value
	neighbor := max(floor, 100-rest-out[i].Value)
	v := 100 - rest - neighbor
	if v < 0 {
		return expandAfterRemoval(out, floor)
	}
	out[i].Value = v
	out[j].Value = neighbor
	return out
}
