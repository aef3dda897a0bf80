/*
 * move.go, part of gomolsim.
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

//Package mcmove contains the Monte Carlo trial moves: displacements of
//atoms, molecules and pairs of atoms, rotations, grand-canonical insertions
//and deletions, and changes of volume.
//
//All the moves work through a compute.Manager, so the neighbor structures
//always reflect the trial configuration. After Accept, the box is ready for
//the next trial. Reject restores the exact previous positions.
package mcmove

import (
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/space"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

//PanicMsg is an error that is used as the argument of a panic.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

//ErrPriorOverlap is the panic of a move that finds that the configuration
//before its trial already overlaps. That can only come from a bad starting
//configuration or a broken potential.
const ErrPriorOverlap PanicMsg = "mcmove: configuration overlaps before the trial"

//metropolis returns the acceptance probability for an energy change du at
//temperature T, times the bias factor. It is 0 if uNew is an overlap.
func metropolis(uOld, uNew, T, bias float64) float64 {
	if compute.IsOverlap(uNew) {
		return 0
	}
	return bias * math.Exp(-(uNew-uOld)/T)
}

func checkPrior(u float64) {
	if compute.IsOverlap(u) {
		panic(ErrPriorOverlap)
	}
}

//randomMolecule returns a random molecule of species s in box, or any
//molecule if s is nil. It returns nil if there are none.
func randomMolecule(box *molsim.Box, s *molsim.Species, rng *rand.Rand) *molsim.Molecule {
	if s != nil {
		ms := box.Molecules(s)
		if len(ms) == 0 {
			return nil
		}
		return ms[rng.Intn(len(ms))]
	}
	n := 0
	for _, sp := range box.Species() {
		n += box.NMolecules(sp)
	}
	if n == 0 {
		return nil
	}
	k := rng.Intn(n)
	for _, sp := range box.Species() {
		ms := box.Molecules(sp)
		if k < len(ms) {
			return ms[k]
		}
		k -= len(ms)
	}
	return nil
}

//randomPoint puts in dst a uniformly random point of the boundary b.
func randomPoint(b space.Boundary, rng *rand.Rand, dst space.Vec) {
	f := mat.NewVecDense(len(dst), nil)
	for d := range dst {
		f.SetVec(d, rng.Float64()-0.5)
	}
	r := mat.NewVecDense(len(dst), dst)
	r.MulVec(b.Edges(), f)
}

//randomShift puts in dst a vector with each component uniform in [-step, step).
func randomShift(rng *rand.Rand, step float64, dst space.Vec) {
	for d := range dst {
		dst[d] = step * (2*rng.Float64() - 1)
	}
}

//saved are the positions of some atoms, kept to undo a trial.
type saved struct {
	atoms []int
	pos   *space.Matrix
}

func (S *saved) save(box *molsim.Box, atoms []int) {
	S.atoms = append(S.atoms[:0], atoms...)
	if S.pos == nil {
		S.pos = space.Zeros(0, box.Dim())
	}
	S.pos.Resize(len(atoms))
	for k, a := range atoms {
		S.pos.SetVec(k, box.Position(a))
	}
}

func (S *saved) restore(mgr compute.Manager) {
	box := mgr.Box()
	for k, a := range S.atoms {
		box.Position(a).E(S.pos.VecView(k))
		mgr.UpdateAtom(a)
	}
}
