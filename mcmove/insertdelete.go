/*
 * insertdelete.go, part of gomolsim.
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

package mcmove

import (
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"github.com/rmera/gomolsim/integrator"
	"github.com/rmera/gomolsim/space"
	"golang.org/x/exp/rand"
)

//InsertDelete is the grand-canonical move. Each trial is, with equal
//probability, the insertion of a molecule of a species at a random point
//(with a random orientation) or the deletion of a random molecule of the species.
//The chemical potential mu is in energy units. The activity is exp(mu/T).
type InsertDelete struct {
	mgr        compute.Manager
	rng        *rand.Rand
	species    *molsim.Species
	mu         float64
	insert     bool
	mol        *molsim.Molecule
	nOld       int
	center, dr space.Vec
	uOld, uNew float64
}

//NewInsertDelete returns an insertion/deletion move for the species s at chemical
//potential mu.
func NewInsertDelete(mgr compute.Manager, s *molsim.Species, mu float64, rng *rand.Rand) *InsertDelete {
	dim := mgr.Box().Dim()
	return &InsertDelete{mgr: mgr, rng: rng, species: s, mu: mu, center: space.NewVec(dim), dr: space.NewVec(dim)}
}

func (I *InsertDelete) Name() string { return "insert/delete" }

//Tracker returns nil. The move has no step size.
func (I *InsertDelete) Tracker() *integrator.StepTracker { return nil }

func (I *InsertDelete) ChemicalPotential() float64 { return I.mu }

func (I *InsertDelete) SetChemicalPotential(mu float64) { I.mu = mu }

//Insertion returns true if the last trial was an insertion.
func (I *InsertDelete) Insertion() bool { return I.insert }

func (I *InsertDelete) DoTrial() bool {
	box := I.mgr.Box()
	I.insert = I.rng.Float64() < 0.5
	I.nOld = box.NMolecules(I.species)
	if I.insert {
		randomPoint(box.Boundary(), I.rng, I.center)
		I.mol = I.mgr.InsertMolecule(I.species, I.center)
		if I.mol.NAtoms() > 1 && box.Dim() == 3 {
			rotateMolecule(box, I.mol, 2*math.Pi*I.rng.Float64(), RandomAxis(I.rng), I.center, I.dr)
			for _, a := range I.mol.Atoms() {
				I.mgr.UpdateAtom(a)
			}
		}
		I.uOld = 0
		return true
	}
	if I.nOld == 0 {
		return false
	}
	I.mol = randomMolecule(box, I.species, I.rng)
	I.uOld = I.mgr.ComputeAtoms(I.mol.Atoms())
	checkPrior(I.uOld)
	I.uNew = 0
	return true
}

func (I *InsertDelete) Chi(T float64) float64 {
	zv := math.Exp(I.mu/T) * I.mgr.Box().Boundary().Volume()
	if I.insert {
		I.uNew = I.mgr.ComputeAtoms(I.mol.Atoms())
		return metropolis(0, I.uNew, T, zv/float64(I.nOld+1))
	}
	return metropolis(I.uOld, 0, T, float64(I.nOld)/zv)
}

func (I *InsertDelete) EnergyChange() float64 { return I.uNew - I.uOld }

func (I *InsertDelete) Accept() {
	if !I.insert {
		I.mgr.DeleteMolecule(I.mol)
	}
	I.mol = nil
}

func (I *InsertDelete) Reject() {
	if I.insert {
		I.mgr.DeleteMolecule(I.mol)
	}
	I.mol = nil
}
