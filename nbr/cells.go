/*
 * cells.go, part of gomolsim.
 *
 * Copyright 2024 The gomolsim authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package nbr finds the atoms that interact, with cell lists for Monte Carlo
//and Verlet neighbor lists for molecular dynamics.
//
//All the iteration functions give the minimum-image vector dr=rj-ri, from
//the first atom to the second one, and its square. The vector is reused
//between calls and must not be kept.
package nbr

import (
	"fmt"
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/space"
)

//PairFunc is called for each pair of atoms found.
type PairFunc func(i, j int, dr space.Vec, r2 float64)

//NeighborFunc is called for each neighbor j of a given atom.
type NeighborFunc func(j int, dr space.Vec, r2 float64)

//CellManager divides the box in a lattice of cells at least rc/cellRange wide,
//and keeps track of which atoms are in which cell. Any two atoms closer than
//rc are then at most cellRange cells apart.
//The cell of an atom is only updated when the CellManager is told that the
//atom moved (UpdateAtom), or with AssignAll.
type CellManager struct {
	box       *molsim.Box
	rc, rc2   float64
	cellRange int

	nCells  []int
	strides []int
	total   int

	cellOf []int
	slotOf []int //position of each atom in the occupant list of its cell
	cells  [][]int

	neighbors   [][]int //all the neighbor cells of each cell
	upNeighbors [][]int //only those with a larger index
}

//NewCellManager returns a cell manager for box and the interaction range rc. The
//cells are made as small as allowed by cellRange, the number of cells
//that might separate two interacting atoms. Atoms are not assigned until
//AssignAll is called.
func NewCellManager(box *molsim.Box, rc float64, cellRange int) (*CellManager, error) {
	if cellRange < 1 {
		return nil, molsim.ConfigError(fmt.Sprintf("%s: cell range %d", molsim.ErrBadParameter, cellRange), "NewCellManager")
	}
	if !(rc > 0) || math.IsInf(rc, 0) {
		return nil, molsim.ConfigError(fmt.Sprintf("%s: neighbor range %g", molsim.ErrBadParameter, rc), "NewCellManager")
	}
	C := &CellManager{box: box, rc: rc, rc2: rc * rc, cellRange: cellRange}
	if err := C.setupLattice(); err != nil {
		return nil, molsim.ErrDecorate(err, "NewCellManager")
	}
	return C, nil
}

//Range returns the distance up to which neighbors are reported.
func (C *CellManager) Range() float64 { return C.rc }

//CellRange returns the number of cells in each direction that are searched for neighbors.
func (C *CellManager) CellRange() int { return C.cellRange }

//NumCells returns the total number of cells.
func (C *CellManager) NumCells() int { return C.total }

//Dims returns the number of cells along each axis.
func (C *CellManager) Dims() []int {
	r := make([]int, len(C.nCells))
	copy(r, C.nCells)
	return r
}

//CellOf returns the cell in which atom i was last assigned.
func (C *CellManager) CellOf(i int) int { return C.cellOf[i] }

//Box returns the box the manager works on.
func (C *CellManager) Box() *molsim.Box { return C.box }

func (C *CellManager) setupLattice() error {
	b := C.box.Boundary()
	w := b.Widths()
	if half := space.MinWidth(b) / 2; C.rc > half {
		return molsim.ConfigError(fmt.Sprintf("%s: neighbor range %g, half box width %g", molsim.ErrCutoffTooLarge, C.rc, half), "setupLattice")
	}
	dim := len(w)
	C.nCells = make([]int, dim)
	C.strides = make([]int, dim)
	C.total = 1
	for d := dim - 1; d >= 0; d-- {
		n := int(math.Floor(w[d] * float64(C.cellRange) / C.rc))
		if n < 1 {
			n = 1
		}
		C.nCells[d] = n
		C.strides[d] = C.total
		C.total *= n
	}
	C.cells = make([][]int, C.total)
	C.neighbors = make([][]int, C.total)
	C.upNeighbors = make([][]int, C.total)
	idx := make([]int, dim)
	off := make([]int, dim)
	seen := make(map[int]bool)
	for c := 0; c < C.total; c++ {
		C.cellCoords(c, idx)
		for k := range seen {
			delete(seen, k)
		}
		for d := range off {
			off[d] = -C.cellRange
		}
		for {
			n := 0
			for d := range off {
				x := (idx[d] + off[d]) % C.nCells[d]
				if x < 0 {
					x += C.nCells[d]
				}
				n += x * C.strides[d]
			}
			if n != c && !seen[n] {
				seen[n] = true
				C.neighbors[c] = append(C.neighbors[c], n)
				if n > c {
					C.upNeighbors[c] = append(C.upNeighbors[c], n)
				}
			}
			d := 0
			for ; d < dim; d++ {
				off[d]++
				if off[d] <= C.cellRange {
					break
				}
				off[d] = -C.cellRange
			}
			if d == dim {
				break
			}
		}
	}
	return nil
}

func (C *CellManager) cellCoords(c int, dst []int) {
	for d := range dst {
		dst[d] = (c / C.strides[d]) % C.nCells[d]
	}
}

//cellIndex returns the cell that contains the position r.
func (C *CellManager) cellIndex(r space.Vec) int {
	var buf [3]float64
	var s space.Vec
	if len(r) <= len(buf) {
		s = buf[:len(r)]
	} else {
		s = space.NewVec(len(r))
	}
	C.box.Boundary().Fractional(s, r)
	c := 0
	for d, v := range s {
		v -= math.Floor(v + 0.5)
		x := int((v + 0.5) * float64(C.nCells[d]))
		if x >= C.nCells[d] {
			x = C.nCells[d] - 1
		} else if x < 0 {
			x = 0
		}
		c += x * C.strides[d]
	}
	return c
}

//Reset rebuilds the lattice of cells, which is needed after the boundary of the
//box changes, and reassigns all the atoms.
func (C *CellManager) Reset() error {
	if err := C.setupLattice(); err != nil {
		return molsim.ErrDecorate(err, "Reset")
	}
	C.AssignAll()
	return nil
}

//AssignAll puts every atom of the box in its cell.
func (C *CellManager) AssignAll() {
	n := C.box.NAtoms()
	for c := range C.cells {
		C.cells[c] = C.cells[c][:0]
	}
	C.cellOf = resize(C.cellOf, n)
	C.slotOf = resize(C.slotOf, n)
	pos := C.box.Positions()
	for i := 0; i < n; i++ {
		C.insert(i, C.cellIndex(pos.VecView(i)))
	}
}

func resize(s []int, n int) []int {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int, n)
}

func (C *CellManager) insert(i, c int) {
	C.cellOf[i] = c
	C.slotOf[i] = len(C.cells[c])
	C.cells[c] = append(C.cells[c], i)
}

//detach takes atom i out of its cell, leaving its cellOf entry stale.
func (C *CellManager) detach(i int) {
	c := C.cellOf[i]
	occ := C.cells[c]
	s := C.slotOf[i]
	last := len(occ) - 1
	if s != last {
		occ[s] = occ[last]
		C.slotOf[occ[s]] = s
	}
	C.cells[c] = occ[:last]
}

//UpdateAtom moves atom i to the cell of its current position, if it changed.
func (C *CellManager) UpdateAtom(i int) {
	c := C.cellIndex(C.box.Position(i))
	if c == C.cellOf[i] {
		return
	}
	C.detach(i)
	C.insert(i, c)
}

//AddAtom assigns atom i, which must have just been added as the last atom of the box.
func (C *CellManager) AddAtom(i int) {
	if i != len(C.cellOf) {
		panic(molsim.ErrAtomIndex)
	}
	C.cellOf = append(C.cellOf, 0)
	C.slotOf = append(C.slotOf, 0)
	C.insert(i, C.cellIndex(C.box.Position(i)))
}

//RemoveAtom takes atom i out of the lists and relabels the last atom as i,
//mirroring what the box does when removing atoms. It must be called before
//the box removes the atom.
func (C *CellManager) RemoveAtom(i int) {
	last := len(C.cellOf) - 1
	if i < 0 || i > last {
		panic(molsim.ErrAtomIndex)
	}
	C.detach(i)
	if i != last {
		c := C.cellOf[last]
		s := C.slotOf[last]
		C.cells[c][s] = i
		C.cellOf[i] = c
		C.slotOf[i] = s
	}
	C.cellOf = C.cellOf[:last]
	C.slotOf = C.slotOf[:last]
}

//ForEachNeighbor calls fn once for each atom j!=i closer than the range to atom i.
func (C *CellManager) ForEachNeighbor(i int, fn NeighborFunc) {
	C.ForEachNeighborAt(i, C.box.Position(i), fn)
}

//ForEachNeighborAt calls fn for each atom j!=i closer than the range to the
//point r, which is assumed to be in the same cell as atom i is assigned to.
func (C *CellManager) ForEachNeighborAt(i int, r space.Vec, fn NeighborFunc) {
	b := C.box.Boundary()
	pos := C.box.Positions()
	dr := space.NewVec(len(r))
	visit := func(cell int) {
		for _, j := range C.cells[cell] {
			if j == i {
				continue
			}
			dr.Ev1Mv2(pos.VecView(j), r)
			b.NearestImage(dr)
			r2 := dr.Squared()
			if r2 <= C.rc2 {
				fn(j, dr, r2)
			}
		}
	}
	c := C.cellOf[i]
	visit(c)
	for _, n := range C.neighbors[c] {
		visit(n)
	}
}

//NeighborsOf appends to dst the atoms within range of atom i, and returns
//the resulting slice.
func (C *CellManager) NeighborsOf(i int, dst []int) []int {
	C.ForEachNeighbor(i, func(j int, dr space.Vec, r2 float64) {
		dst = append(dst, j)
	})
	return dst
}

//ForEachPair calls fn exactly once for each unordered pair of atoms within range.
func (C *CellManager) ForEachPair(fn PairFunc) {
	C.ForEachPairInCells(0, C.total, fn)
}

//ForEachPairInCells calls fn for the pairs whose first atom is in the cells [lo,hi).
//Pairs split among cells are visited from the cell with the lower index, so
//disjoint ranges of cells give disjoint sets of pairs. It is safe to call
//concurrently for different ranges, as long as the box and the cells are
//not modified.
func (C *CellManager) ForEachPairInCells(lo, hi int, fn PairFunc) {
	b := C.box.Boundary()
	pos := C.box.Positions()
	dr := space.NewVec(C.box.Dim())
	pair := func(i, j int) {
		dr.Ev1Mv2(pos.VecView(j), pos.VecView(i))
		b.NearestImage(dr)
		r2 := dr.Squared()
		if r2 <= C.rc2 {
			fn(i, j, dr, r2)
		}
	}
	for c := lo; c < hi; c++ {
		occ := C.cells[c]
		for a, i := range occ {
			for _, j := range occ[a+1:] {
				pair(i, j)
			}
		}
		for _, n := range C.upNeighbors[c] {
			other := C.cells[n]
			for _, i := range occ {
				for _, j := range other {
					pair(i, j)
				}
			}
		}
	}
}
