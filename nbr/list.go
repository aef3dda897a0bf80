/*
 * list.go, part of gomolsim.
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

package nbr

import (
	"fmt"
	"log"
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/space"
)

//List is a Verlet neighbor list. Each atom keeps the atoms that were closer than
//rc*rangeFactor at the last rebuild. The list stays valid, for interactions of
//range rc, until some atom moves more than half the skin (rangeFactor-1)*rc.
type List struct {
	box         *molsim.Box
	cells       *CellManager
	rc          float64
	rangeFactor float64
	safe2       float64 //squared displacement that triggers a rebuild
	unsafe2     float64 //squared displacement beyond which pairs might have been missed

	nbrs     [][]int
	ref      *space.Matrix
	nUpdates int
	nUnsafe  int
}

//NewList returns a neighbor list for interactions of range rc in box. The
//list is built with cells searched cellRange deep, and it is not filled
//until Build or Update is called.
func NewList(box *molsim.Box, rc, rangeFactor float64, cellRange int) (*List, error) {
	if !(rangeFactor > 1) {
		return nil, molsim.ConfigError(fmt.Sprintf("%s: neighbor range factor %g must be larger than 1", molsim.ErrBadParameter, rangeFactor), "NewList")
	}
	cells, err := NewCellManager(box, rc*rangeFactor, cellRange)
	if err != nil {
		return nil, molsim.ErrDecorate(err, "NewList")
	}
	skin := (rangeFactor - 1) * rc
	L := &List{
		box:         box,
		cells:       cells,
		rc:          rc,
		rangeFactor: rangeFactor,
		safe2:       skin * skin / 4,
		unsafe2:     skin * skin,
		ref:         space.Zeros(0, box.Dim()),
	}
	return L, nil
}

//Range returns the interaction range the list is valid for.
func (L *List) Range() float64 { return L.rc }

//ListRange returns the range of the neighbors stored in the list.
func (L *List) ListRange() float64 { return L.cells.Range() }

//Box returns the box of the list.
func (L *List) Box() *molsim.Box { return L.box }

//Cells returns the cell manager used to build the list.
func (L *List) Cells() *CellManager { return L.cells }

//NumUpdates returns the number of times the list has been built.
func (L *List) NumUpdates() int { return L.nUpdates }

//NumUnsafe returns the number of rebuilds that happened after some atom had
//moved more than the whole skin.
func (L *List) NumUnsafe() int { return L.nUnsafe }

//Build fills the list from scratch.
func (L *List) Build() {
	n := L.box.NAtoms()
	L.cells.AssignAll()
	if cap(L.nbrs) >= n {
		L.nbrs = L.nbrs[:n]
	} else {
		L.nbrs = make([][]int, n)
	}
	for i := range L.nbrs {
		L.nbrs[i] = L.nbrs[i][:0]
	}
	L.cells.ForEachPair(func(i, j int, dr space.Vec, r2 float64) {
		L.nbrs[i] = append(L.nbrs[i], j)
		L.nbrs[j] = append(L.nbrs[j], i)
	})
	L.ref.Copy(L.box.Positions())
	L.nUpdates++
}

//maxDisplacement2 returns the largest squared displacement of any atom since
//the last build.
func (L *List) maxDisplacement2() float64 {
	b := L.box.Boundary()
	pos := L.box.Positions()
	dr := space.NewVec(L.box.Dim())
	max := 0.0
	for i := 0; i < pos.NVecs(); i++ {
		dr.Ev1Mv2(pos.VecView(i), L.ref.VecView(i))
		b.NearestImage(dr)
		if r2 := dr.Squared(); r2 > max {
			max = r2
		}
	}
	return max
}

//NeedsUpdate returns true if the list is stale, i.e. an atom has moved more
//than half the skin since the last build, or atoms were added or removed.
func (L *List) NeedsUpdate() bool {
	if L.nUpdates == 0 || L.ref.NVecs() != L.box.NAtoms() {
		return true
	}
	return L.maxDisplacement2() > L.safe2
}

//Update rebuilds the list if it is stale, and returns true if it did.
func (L *List) Update() bool {
	if L.nUpdates > 0 && L.ref.NVecs() == L.box.NAtoms() {
		m := L.maxDisplacement2()
		if m <= L.safe2 {
			return false
		}
		if m > L.unsafe2 {
			L.nUnsafe++
			log.Printf("gomolsim/nbr: Atoms exceeded the safe neighbor limit (moved %.3g, skin %.3g). Some interactions may have been missed, consider a larger range factor or a smaller time step", math.Sqrt(m), math.Sqrt(L.unsafe2))
		}
	}
	L.Build()
	return true
}

//AtomMoved rebuilds the list if atom i has moved more than half the skin
//since the last build, and returns true if it did. If every moved atom is
//reported, the list never needs the full check done by Update.
func (L *List) AtomMoved(i int) bool {
	if L.nUpdates == 0 || L.ref.NVecs() != L.box.NAtoms() {
		L.Build()
		return true
	}
	dr := space.NewVec(L.box.Dim())
	dr.Ev1Mv2(L.box.Position(i), L.ref.VecView(i))
	L.box.Boundary().NearestImage(dr)
	if dr.Squared() <= L.safe2 {
		return false
	}
	L.Build()
	return true
}

//Reset rebuilds the cell lattice (after a change of the boundary) and the list.
func (L *List) Reset() error {
	if err := L.cells.setupLattice(); err != nil {
		return molsim.ErrDecorate(err, "Reset")
	}
	L.Build()
	return nil
}

//Neighbors returns the atoms within the list range of atom i at the last build.
//The slice must not be modified.
func (L *List) Neighbors(i int) []int { return L.nbrs[i] }

//ForEachPair calls fn once for each pair in the list whose current distance is within
//the list range.
func (L *List) ForEachPair(fn PairFunc) {
	L.ForEachPairInAtoms(0, len(L.nbrs), fn)
}

//ForEachPairInAtoms calls fn for the pairs i<j of the list with i in [lo,hi).
//It is safe to call concurrently for different ranges.
func (L *List) ForEachPairInAtoms(lo, hi int, fn PairFunc) {
	b := L.box.Boundary()
	pos := L.box.Positions()
	dr := space.NewVec(L.box.Dim())
	lr2 := L.cells.rc2
	for i := lo; i < hi; i++ {
		ri := pos.VecView(i)
		for _, j := range L.nbrs[i] {
			if j < i {
				continue
			}
			dr.Ev1Mv2(pos.VecView(j), ri)
			b.NearestImage(dr)
			r2 := dr.Squared()
			if r2 <= lr2 {
				fn(i, j, dr, r2)
			}
		}
	}
}

//ForEachNeighbor calls fn for every neighbor of atom i in the list within the list range.
func (L *List) ForEachNeighbor(i int, fn NeighborFunc) {
	b := L.box.Boundary()
	pos := L.box.Positions()
	dr := space.NewVec(L.box.Dim())
	ri := pos.VecView(i)
	lr2 := L.cells.rc2
	for _, j := range L.nbrs[i] {
		dr.Ev1Mv2(pos.VecView(j), ri)
		b.NearestImage(dr)
		r2 := dr.Squared()
		if r2 <= lr2 {
			fn(j, dr, r2)
		}
	}
}
