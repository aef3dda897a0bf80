/*
 * lrc.go, part of gomolsim.
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
	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/potential"
	"github.com/rmera/gomolsim/space"
)

type tailPair struct {
	a, b int //type indexes
	tail potential.Tailer
	rc   float64
}

//LRC is the long-range (tail) correction of truncated potentials, assuming
//a uniform density beyond the cutoff.
type LRC struct {
	box    *molsim.Box
	pairs  []tailPair
	virial float64
}

func NewLRC(box *molsim.Box) *LRC {
	return &LRC{box: box}
}

//NewLRCFor returns the tail corrections for all the potentials set in p.
func NewLRCFor(p *PairCompute) *LRC {
	L := NewLRC(p.box)
	for a, row := range p.pots {
		for b := a; b < len(row); b++ {
			if row[b] != nil {
				L.Add(p.box.TypeByIndex(a), p.box.TypeByIndex(b), row[b])
			}
		}
	}
	return L
}

//Add adds the tail correction of p for the pairs of atoms of types a and b. It
//returns false, and does nothing, if p has no tail.
func (L *LRC) Add(a, b *molsim.AtomType, p potential.Soft) bool {
	t, ok := p.(potential.Tailer)
	if !ok {
		return false
	}
	if tr, ok := p.(*potential.Truncated); ok && !tr.HasTail() {
		return false
	}
	L.pairs = append(L.pairs, tailPair{a: L.box.RegisterType(a), b: L.box.RegisterType(b), tail: t, rc: p.Range()})
	return true
}

//energy returns the tail energy and virial with the type counts given by count.
func (L *LRC) energy(count func(k int) int) (float64, float64) {
	v := L.box.Boundary().Volume()
	dim := L.box.Dim()
	u, w := 0.0, 0.0
	for _, p := range L.pairs {
		na := float64(count(p.a))
		var npairs float64
		if p.a == p.b {
			npairs = na * (na - 1) / 2
		} else {
			npairs = na * float64(count(p.b))
		}
		density := npairs / v
		u += density * p.tail.UIntegral(p.rc, dim)
		w += density * p.tail.DUIntegral(p.rc, dim)
	}
	return u, w
}

func (L *LRC) ComputeAll(doForces bool) float64 {
	u, w := L.energy(L.box.CountType)
	L.virial = w
	return u
}

//ComputeAtoms returns the change of the tail energy when atoms are taken out of the box.
func (L *LRC) ComputeAtoms(atoms []int) float64 {
	if len(L.pairs) == 0 {
		return 0
	}
	removed := make(map[int]int)
	for _, a := range atoms {
		removed[L.box.TypeIndex(a)]++
	}
	full, _ := L.energy(L.box.CountType)
	less, _ := L.energy(func(k int) int { return L.box.CountType(k) - removed[k] })
	return full - less
}

func (L *LRC) Virial() float64 { return L.virial }

//Forces returns nil, the tail correction gives no forces.
func (L *LRC) Forces() *space.Matrix { return nil }
