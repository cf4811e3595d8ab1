package lalr

import "sort"

type entry struct {
	from, to int
}

// packer merges sparse action and goto vectors into a single comb-packed table.
type packer struct {
	vectors [][]entry
	base    []int
	table   []int
	check   []int
	lowZero int
	high    int
}

func newPacker(nvectors int) *packer {
	return &packer{
		vectors: make([][]entry, nvectors),
		base:    make([]int, nvectors),
	}
}

func (p *packer) setVector(i int, es []entry) {
	sort.Slice(es, func(a, b int) bool {
		return es[a].from < es[b].from
	})
	p.vectors[i] = es
}

func width(es []entry) int {
	return es[len(es)-1].from - es[0].from + 1
}

// order returns non-empty vector indexes sorted by width then by entry count, both descending.
func (p *packer) order() []int {
	var res []int
	for i, es := range p.vectors {
		if len(es) > 0 {
			res = append(res, i)
		}
	}
	sort.SliceStable(res, func(a, b int) bool {
		va, vb := p.vectors[res[a]], p.vectors[res[b]]
		wa, wb := width(va), width(vb)
		if wa != wb {
			return wa > wb
		}
		return len(va) > len(vb)
	})
	return res
}

func sameVectors(a, b []entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// matching returns a packed action vector equal to vector at position pos of order or -1.
// Goto vectors are never shared.
func (p *packer) matching(order []int, pos, actionVectors int) int {
	i := order[pos]
	if i >= actionVectors {
		return -1
	}

	vi := p.vectors[i]
	w := width(vi)
	for prev := pos - 1; prev >= 0; prev-- {
		j := order[prev]
		vj := p.vectors[j]
		if width(vj) != w || len(vj) != len(vi) {
			return -1
		}
		if sameVectors(vi, vj) {
			return j
		}
	}
	return -1
}

func (p *packer) grow(size int) {
	for len(p.table) <= size {
		p.table = append(p.table, 0)
		p.check = append(p.check, -1)
	}
}

func (p *packer) place(es []entry, used map[int]bool) int {
	j := p.lowZero - es[0].from
	for ; ; j++ {
		if j == 0 || used[j] {
			continue
		}

		ok := true
		for _, e := range es {
			loc := j + e.from
			p.grow(loc + 1)
			if p.check[loc] != -1 {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		for _, e := range es {
			loc := j + e.from
			p.table[loc] = e.to
			p.check[loc] = e.from
			if loc > p.high {
				p.high = loc
			}
		}
		for p.lowZero < len(p.check) && p.check[p.lowZero] != -1 {
			p.lowZero++
		}
		return j
	}
}

func (p *packer) pack(actionVectors int) {
	p.grow(1000)
	order := p.order()
	used := make(map[int]bool)
	for pos, i := range order {
		var b int
		if m := p.matching(order, pos, actionVectors); m >= 0 {
			b = p.base[m]
		} else {
			b = p.place(p.vectors[i], used)
			used[b] = true
		}
		p.base[i] = b
	}

	p.table = p.table[:p.high+1]
	p.check = p.check[:p.high+1]
}
