/*
 * rotate.go, part of gomolsim.
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
	"gonum.org/v1/gonum/spatial/r3"
)

//MoleculeRotate rotates one random molecule about its center of mass, by a
//random angle of up to the step size. In 3D the axis is random.
type MoleculeRotate struct {
	mgr        compute.Manager
	rng        *rand.Rand
	species    *molsim.Species
	tracker    *integrator.StepTracker
	mol        *molsim.Molecule
	old        saved
	com, dr    space.Vec
	uOld, uNew float64
}

//NewMoleculeRotate returns a rotation move for the molecules of species s, or for
//all the molecules if s is nil. Only 2D and 3D boxes are supported.
func NewMoleculeRotate(mgr compute.Manager, s *molsim.Species, rng *rand.Rand) *MoleculeRotate {
	dim := mgr.Box().Dim()
	if dim != 2 && dim != 3 {
		panic(molsim.ErrShape)
	}
	return &MoleculeRotate{
		mgr:     mgr,
		rng:     rng,
		species: s,
		tracker: integrator.NewStepTracker(0.2, 0, math.Pi),
		com:     space.NewVec(dim),
		dr:      space.NewVec(dim),
	}
}

func (M *MoleculeRotate) Name() string { return "molecule rotation" }

func (M *MoleculeRotate) Tracker() *integrator.StepTracker { return M.tracker }

//RandomAxis returns a unit vector with a uniformly random direction.
func RandomAxis(rng *rand.Rand) r3.Vec {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	s := math.Sqrt(1 - z*z)
	return r3.Vec{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: z}
}

//rotateMolecule rotates the atoms of m by angle about their center of mass. In 3D,
//the rotation axis is axis.
func rotateMolecule(box *molsim.Box, m *molsim.Molecule, angle float64, axis r3.Vec, com, dr space.Vec) {
	m.CenterOfMass(box, com)
	b := box.Boundary()
	var rot r3.Rotation
	if len(com) == 3 {
		rot = r3.NewRotation(angle, axis)
	}
	cos, sin := math.Cos(angle), math.Sin(angle)
	for _, a := range m.Atoms() {
		r := box.Position(a)
		dr.Ev1Mv2(r, com)
		b.NearestImage(dr)
		if len(dr) == 3 {
			p := rot.Rotate(r3.Vec{X: dr[0], Y: dr[1], Z: dr[2]})
			dr[0], dr[1], dr[2] = p.X, p.Y, p.Z
		} else {
			dr[0], dr[1] = cos*dr[0]-sin*dr[1], sin*dr[0]+cos*dr[1]
		}
		r.E(com)
		r.PE(dr)
		b.CentralImage(r)
	}
}

func (M *MoleculeRotate) DoTrial() bool {
	box := M.mgr.Box()
	M.mol = randomMolecule(box, M.species, M.rng)
	if M.mol == nil || M.mol.NAtoms() < 2 {
		return false
	}
	atoms := M.mol.Atoms()
	M.uOld = M.mgr.ComputeAtoms(atoms)
	checkPrior(M.uOld)
	M.old.save(box, atoms)
	angle := M.tracker.Step() * (2*M.rng.Float64() - 1)
	var axis r3.Vec
	if box.Dim() == 3 {
		axis = RandomAxis(M.rng)
	}
	rotateMolecule(box, M.mol, angle, axis, M.com, M.dr)
	for _, a := range atoms {
		M.mgr.UpdateAtom(a)
	}
	return true
}

func (M *MoleculeRotate) Chi(T float64) float64 {
	M.uNew = M.mgr.ComputeAtoms(M.mol.Atoms())
	return metropolis(M.uOld, M.uNew, T, 1)
}

func (M *MoleculeRotate) EnergyChange() float64 { return M.uNew - M.uOld }

func (M *MoleculeRotate) Accept() {}

func (M *MoleculeRotate) Reject() { M.old.restore(M.mgr) }
