/*
 * pair.go, part of gomolsim.
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

package compute

import (
	"fmt"
	"math"
	"sync"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/nbr"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/space"
)

//pairTable holds the pair potentials between atom types, indexed by the
//type registry of the box.
type pairTable struct {
	box   *molsim.Box
	pots  [][]potential.Soft
	intra bool
	maxRc float64
}

func (P *pairTable) set(a, b *molsim.AtomType, p potential.Soft, nbrRange float64) error {
	rc := p.Range()
	if rc > nbrRange {
		return molsim.ConfigError(fmt.Sprintf("%s: potential range %g, neighbor range %g", molsim.ErrBadParameter, rc, nbrRange), "SetPotential")
	}
	if err := potential.CheckRange(p, P.box.Boundary()); err != nil {
		return molsim.ErrDecorate(err, "SetPotential")
	}
	ia := P.box.RegisterType(a)
	ib := P.box.RegisterType(b)
	n := P.box.NTypes()
	for len(P.pots) < n {
		P.pots = append(P.pots, nil)
	}
	for k := range P.pots {
		for len(P.pots[k]) < n {
			P.pots[k] = append(P.pots[k], nil)
		}
	}
	P.pots[ia][ib] = p
	P.pots[ib][ia] = p
	P.maxRc = math.Max(P.maxRc, rc)
	return nil
}

func (P *pairTable) potential(i, j int) potential.Soft {
	ti, tj := P.box.TypeIndex(i), P.box.TypeIndex(j)
	if ti >= len(P.pots) || tj >= len(P.pots[ti]) {
		return nil
	}
	return P.pots[ti][tj]
}

//Potential returns the potential between atom types a and b, or nil.
func (P *pairTable) Potential(a, b *molsim.AtomType) potential.Soft {
	ia := P.box.RegisterType(a)
	ib := P.box.RegisterType(b)
	if ia >= len(P.pots) || ib >= len(P.pots[ia]) {
		return nil
	}
	return P.pots[ia][ib]
}

func (P *pairTable) excluded(i, j int) bool {
	return !P.intra && P.box.MoleculeOf(i) == P.box.MoleculeOf(j)
}

//checkBox returns an error if some potential is now longer than half the box.
func (P *pairTable) checkBox() error {
	if half := space.MinWidth(P.box.Boundary()) / 2; P.maxRc > half {
		return molsim.ConfigError(fmt.Sprintf("%s: range %g, half box width %g", molsim.ErrCutoffTooLarge, P.maxRc, half), "checkBox")
	}
	return nil
}

//accumulator collects the sums of one goroutine.
type accumulator struct {
	u, w   float64
	forces *space.Matrix //nil if forces are not needed
}

func (P *pairTable) addPair(acc *accumulator, i, j int, dr space.Vec, r2 float64) {
	if P.excluded(i, j) {
		return
	}
	p := P.potential(i, j)
	if p == nil {
		return
	}
	acc.u += p.U(r2)
	du := p.DU(r2)
	acc.w += du
	if acc.forces != nil && du != 0 {
		fi := acc.forces.VecView(i)
		fj := acc.forces.VecView(j)
		f := du / r2
		fi.PEa1Tv1(f, dr)
		fj.PEa1Tv1(-f, dr)
	}
}

//atomsEnergy returns the energy of the interactions that involve the given
//atoms, with the neighbors of each atom given by each.
func (P *pairTable) atomsEnergy(atoms []int, each func(i int, fn nbr.NeighborFunc)) float64 {
	u := 0.0
	for k, i := range atoms {
		each(i, func(j int, dr space.Vec, r2 float64) {
			//pairs inside the set are counted from their first member
			for _, o := range atoms[:k+1] {
				if o == j {
					return
				}
			}
			if P.excluded(i, j) {
				return
			}
			if p := P.potential(i, j); p != nil {
				u += p.U(r2)
			}
		})
	}
	return u
}

//reduce adds the partial sums into dst, which gets the totals.
func reduce(dst *accumulator, parts []accumulator) {
	dst.u, dst.w = 0, 0
	if dst.forces != nil {
		dst.forces.Zero()
	}
	for _, p := range parts {
		dst.u += p.u
		dst.w += p.w
		if dst.forces != nil && p.forces != nil {
			d := dst.forces.RawData()
			for k, v := range p.forces.RawData() {
				d[k] += v
			}
		}
	}
}

//PairCompute is the sum of the pair interactions in a box, found with a
//cell list. ComputeAll reassigns all the atoms to their cells first, so it
//can follow any number of moves. ComputeAtoms needs the cell list to be kept
//consistent with the box through the Tracker methods (or a Sum).
type PairCompute struct {
	pairTable
	cells   *nbr.CellManager
	cpus    int
	forces  *space.Matrix
	virial  float64
	scratch []accumulator
}

//NewPairCompute returns a pair compute for the box of cells, with no potentials set.
//The cells are assigned.
func NewPairCompute(cells *nbr.CellManager, options ...*Options) *PairCompute {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	box := cells.Box()
	P := &PairCompute{pairTable: pairTable{box: box, intra: o.IntraMolecular()}, cells: cells, cpus: o.Cpus()}
	P.forces = space.Zeros(0, box.Dim())
	cells.AssignAll()
	return P
}

//SetPotential sets p as the interaction between atoms of types a and b. It returns a configuration
//error if the range of the potential is longer than that of the cells, or than
//half the box.
func (P *PairCompute) SetPotential(a, b *molsim.AtomType, p potential.Soft) error {
	return P.set(a, b, p, P.cells.Range())
}

//Cells returns the cell manager of the compute.
func (P *PairCompute) Cells() *nbr.CellManager { return P.cells }

func (P *PairCompute) ComputeAll(doForces bool) float64 {
	P.cells.AssignAll()
	n := P.box.NAtoms()
	var total accumulator
	if doForces {
		P.forces.Resize(n)
		P.forces.Zero()
		total.forces = P.forces
	}
	ncells := P.cells.NumCells()
	cpus := P.cpus
	if cpus > ncells {
		cpus = ncells
	}
	if cpus <= 1 {
		P.cells.ForEachPair(func(i, j int, dr space.Vec, r2 float64) {
			P.addPair(&total, i, j, dr, r2)
		})
	} else {
		P.scratch = resizeScratch(P.scratch, cpus, n, P.box.Dim(), doForces)
		var wg sync.WaitGroup
		for w := 0; w < cpus; w++ {
			lo := w * ncells / cpus
			hi := (w + 1) * ncells / cpus
			acc := &P.scratch[w]
			wg.Add(1)
			go func() {
				defer wg.Done()
				P.cells.ForEachPairInCells(lo, hi, func(i, j int, dr space.Vec, r2 float64) {
					P.addPair(acc, i, j, dr, r2)
				})
			}()
		}
		wg.Wait()
		reduce(&total, P.scratch)
	}
	P.virial = total.w
	if IsOverlap(total.u) {
		return math.Inf(1)
	}
	return total.u
}

func resizeScratch(s []accumulator, cpus, n, dim int, doForces bool) []accumulator {
	if len(s) != cpus {
		s = make([]accumulator, cpus)
	}
	for k := range s {
		s[k].u, s[k].w = 0, 0
		if !doForces {
			s[k].forces = nil
			continue
		}
		if s[k].forces == nil {
			s[k].forces = space.Zeros(n, dim)
		}
		s[k].forces.Resize(n)
		s[k].forces.Zero()
	}
	return s
}

func (P *PairCompute) ComputeAtoms(atoms []int) float64 {
	u := P.atomsEnergy(atoms, P.cells.ForEachNeighbor)
	if IsOverlap(u) {
		return math.Inf(1)
	}
	return u
}

func (P *PairCompute) Virial() float64 { return P.virial }

func (P *PairCompute) Forces() *space.Matrix { return P.forces }

func (P *PairCompute) AtomMoved(i int)    { P.cells.UpdateAtom(i) }
func (P *PairCompute) AtomAdded(i int)    { P.cells.AddAtom(i) }
func (P *PairCompute) AtomRemoving(i int) { P.cells.RemoveAtom(i) }

func (P *PairCompute) BoxChanged() error {
	if err := P.checkBox(); err != nil {
		return molsim.ErrDecorate(err, "BoxChanged")
	}
	return P.cells.Reset()
}

//ListCompute is the sum of the pair interactions in a box, found with a Verlet
//list. It checks whether the list is stale before each ComputeAll, which is
//what molecular dynamics needs, and after each single move reported with
//AtomMoved, which is what Monte Carlo needs.
type ListCompute struct {
	pairTable
	list    *nbr.List
	cpus    int
	dirty   bool
	forces  *space.Matrix
	virial  float64
	scratch []accumulator
}

//NewListCompute returns a pair compute that uses list, with no potentials set.
func NewListCompute(list *nbr.List, options ...*Options) *ListCompute {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	box := list.Box()
	L := &ListCompute{pairTable: pairTable{box: box, intra: o.IntraMolecular()}, list: list, cpus: o.Cpus()}
	L.forces = space.Zeros(0, box.Dim())
	return L
}

//SetPotential sets p as the interaction between atoms of types a and b. It returns a configuration
//error if the range of the potential is longer than the one of the list, or than half the box.
func (L *ListCompute) SetPotential(a, b *molsim.AtomType, p potential.Soft) error {
	return L.set(a, b, p, L.list.Range())
}

//List returns the neighbor list of the compute.
func (L *ListCompute) List() *nbr.List { return L.list }

func (L *ListCompute) update() {
	if L.dirty {
		L.list.Build()
		L.dirty = false
		return
	}
	L.list.Update()
}

func (L *ListCompute) ComputeAll(doForces bool) float64 {
	L.update()
	n := L.box.NAtoms()
	var total accumulator
	if doForces {
		L.forces.Resize(n)
		L.forces.Zero()
		total.forces = L.forces
	}
	cpus := L.cpus
	if cpus > n {
		cpus = n
	}
	if cpus <= 1 {
		L.list.ForEachPair(func(i, j int, dr space.Vec, r2 float64) {
			L.addPair(&total, i, j, dr, r2)
		})
	} else {
		L.scratch = resizeScratch(L.scratch, cpus, n, L.box.Dim(), doForces)
		var wg sync.WaitGroup
		for w := 0; w < cpus; w++ {
			lo := w * n / cpus
			hi := (w + 1) * n / cpus
			acc := &L.scratch[w]
			wg.Add(1)
			go func() {
				defer wg.Done()
				L.list.ForEachPairInAtoms(lo, hi, func(i, j int, dr space.Vec, r2 float64) {
					L.addPair(acc, i, j, dr, r2)
				})
			}()
		}
		wg.Wait()
		reduce(&total, L.scratch)
	}
	L.virial = total.w
	if IsOverlap(total.u) {
		return math.Inf(1)
	}
	return total.u
}

//ComputeAtoms uses the list as it is. The list is current as long as every
//move was reported through AtomMoved.
func (L *ListCompute) ComputeAtoms(atoms []int) float64 {
	if L.dirty {
		L.update()
	}
	u := L.atomsEnergy(atoms, L.list.ForEachNeighbor)
	if IsOverlap(u) {
		return math.Inf(1)
	}
	return u
}

func (L *ListCompute) Virial() float64 { return L.virial }

func (L *ListCompute) Forces() *space.Matrix { return L.forces }

//AtomMoved rebuilds the list if atom i has gone further than half the skin.
func (L *ListCompute) AtomMoved(i int) {
	if L.dirty {
		return
	}
	L.list.AtomMoved(i)
}

func (L *ListCompute) AtomAdded(i int)    { L.dirty = true }
func (L *ListCompute) AtomRemoving(i int) { L.dirty = true }

func (L *ListCompute) BoxChanged() error {
	if err := L.checkBox(); err != nil {
		return molsim.ErrDecorate(err, "BoxChanged")
	}
	L.dirty = false
	return L.list.Reset()
}
