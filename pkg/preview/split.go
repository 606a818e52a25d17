package preview

import "github.com/matzehuels/panecraft/pkg/design"

// Split divides total cells among the slots described by cs, the way a
// terminal layout engine would:
//
//   - Length(n) takes n cells
//   - Percentage(p) takes floor(total*p/100) cells
//   - Min(n) takes n cells and grows into free space
//   - Max(n) starts empty and grows into free space up to n
//
// Free space is shared evenly among the growable slots. When fixed demands
// exceed total, slots are shrunk from the back. Whatever is left over after
// growing goes to the last slot, so the sizes always sum to total.
func Split(total int, cs []design.Constraint) []int {
	sizes := make([]int, len(cs))
	if len(cs) == 0 || total <= 0 {
		return sizes
	}

	used := 0
	var flex []int
	for i, c := range cs {
		v := max(c.Value, 0)
		switch c.Kind {
		case design.KindLength:
			sizes[i] = v
		case design.KindMin:
			sizes[i] = v
			flex = append(flex, i)
		case design.KindMax:
			flex = append(flex, i)
		default:
			sizes[i] = total * v / 100
		}
		used += sizes[i]
	}

	for i := len(sizes) - 1; i >= 0 && used > total; i-- {
		cut := min(sizes[i], used-total)
		sizes[i] -= cut
		used -= cut
	}

	rem := total - used
	for rem > 0 {
		var open []int
		for _, i := range flex {
			if cs[i].Kind == design.KindMax && sizes[i] >= cs[i].Value {
				continue
			}
			open = append(open, i)
		}
		if len(open) == 0 {
			break
		}
		share := max(rem/len(open), 1)
		for _, i := range open {
			if rem == 0 {
				break
			}
			add := min(share, rem)
			if cs[i].Kind == design.KindMax {
				add = min(add, cs[i].Value-sizes[i])
			}
			sizes[i] += add
			rem -= add
		}
	}
	sizes[len(sizes)-1] += rem
	return sizes
}
