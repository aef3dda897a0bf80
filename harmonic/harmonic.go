/*
 * harmonic.go, part of gomolsim.
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

//Package harmonic obtains the normal modes of a configuration, from a
//Hessian built by finite differences of the forces of a compute.
package harmonic

import (
	"fmt"
	"log"
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/compute"
	"gonum.org/v1/gonum/mat"
)

//DefaultStep is the displacement used for the finite differences when none is given.
const DefaultStep = 1e-4

//negTol is the size, relative to the largest eigenvalue, below which negative
//eigenvalues are taken as zero.
const negTol = 1e-6

type updater interface {
	UpdateAtom(i int)
}

//Hessian returns the matrix of second derivatives of the energy of box with
//respect to the coordinates, indexed as atom*dim+coordinate. Each column is
//obtained from the forces at a displacement of h and -h in that coordinate,
//with central differences, and the result is symmetrized. If c keeps neighbor
//structures (it is a compute.Manager, for instance), it is told of every
//displacement. The configuration is restored before returning.
func Hessian(box *molsim.Box, c compute.Compute, h float64) (*mat.SymDense, error) {
	if h <= 0 {
		h = DefaultStep
	}
	n := box.NAtoms()
	dim := box.Dim()
	if n == 0 {
		return nil, molsim.ConfigError(molsim.ErrNoAtoms, "Hessian")
	}
	up, _ := c.(updater)
	nd := n * dim
	raw := mat.NewDense(nd, nd, nil)
	plus := make([]float64, nd)
	forces := func(dst []float64) error {
		u := c.ComputeAll(true)
		if compute.IsOverlap(u) {
			return molsim.NewError("overlapping configuration", "Hessian")
		}
		f := c.Forces()
		if f == nil || f.NVecs() != n {
			return molsim.ConfigError("the compute gives no forces", "Hessian")
		}
		copy(dst, f.RawData())
		return nil
	}
	minus := make([]float64, nd)
	for i := 0; i < n; i++ {
		r := box.Position(i)
		for d := 0; d < dim; d++ {
			x := r[d]
			var err error
			r[d] = x + h
			notify(up, i)
			if err = forces(plus); err == nil {
				r[d] = x - h
				notify(up, i)
				err = forces(minus)
			}
			r[d] = x
			notify(up, i)
			if err != nil {
				c.ComputeAll(true)
				return nil, molsim.ErrDecorate(err, "Hessian")
			}
			col := i*dim + d
			for k := range plus {
				//the forces are minus the gradient
				raw.Set(k, col, -(plus[k]-minus[k])/(2*h))
			}
		}
	}
	c.ComputeAll(true)
	H := mat.NewSymDense(nd, nil)
	for i := 0; i < nd; i++ {
		for j := i; j < nd; j++ {
			H.SetSym(i, j, 0.5*(raw.At(i, j)+raw.At(j, i)))
		}
	}
	return H, nil
}

func notify(up updater, i int) {
	if up != nil {
		up.UpdateAtom(i)
	}
}

//MassWeights returns, for each coordinate of the box, 1/sqrt(m) of its atom, or 0
//for atoms of infinite mass, which then don't take part in the modes.
func MassWeights(box *molsim.Box) []float64 {
	dim := box.Dim()
	w := make([]float64, box.NAtoms()*dim)
	for i := 0; i < box.NAtoms(); i++ {
		rm := math.Sqrt(box.Type(i).RMass())
		for d := 0; d < dim; d++ {
			w[i*dim+d] = rm
		}
	}
	return w
}

//Modes returns the eigenvalues, ascending, and the eigenvectors (as columns) of the
//Hessian H weighted with w, the factors from MassWeights, or unweighted if w is nil.
//The eigenvalues are the squared angular frequencies of the normal modes.
//Negative eigenvalues are set to zero. Those that are too large to be rounding
//noise are logged, as they mean that the configuration is not a minimum or that
//the finite differences failed.
func Modes(H *mat.SymDense, w []float64) ([]float64, *mat.Dense, error) {
	n := H.SymmetricDim()
	wH := mat.NewSymDense(n, nil)
	if w != nil && len(w) != n {
		return nil, nil, molsim.ConfigError(fmt.Sprintf("%s: %d weights for a %dx%d Hessian", molsim.ErrDimensionMismatch, len(w), n, n), "Modes")
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := H.At(i, j)
			if w != nil {
				v *= w[i] * w[j]
			}
			wH.SetSym(i, j, v)
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(wH, true); !ok {
		return nil, nil, molsim.NewError("eigendecomposition failed", "Modes")
	}
	vals := eig.Values(nil)
	vecs := mat.NewDense(n, n, nil)
	eig.VectorsTo(vecs)
	ClampEigenvalues(vals)
	return vals, vecs, nil
}

//ClampEigenvalues sets the negative values of ev to zero, logging those that are
//not negligible compared with the largest absolute value, or that are not finite.
func ClampEigenvalues(ev []float64) {
	max := 0.0
	for _, v := range ev {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			max = math.Max(max, math.Abs(v))
		}
	}
	logged := false
	for i, v := range ev {
		if v >= 0 && !math.IsInf(v, 1) {
			continue
		}
		if (math.IsNaN(v) || math.IsInf(v, 0) || -v > negTol*max) && !logged {
			log.Printf("harmonic: numerical-derivative failure, eigenvalue %d is %g (largest %g). Set to zero", i, v, max)
			logged = true
		}
		ev[i] = 0
	}
}

//Frequencies returns the angular frequencies, the square roots of the eigenvalues ev,
//which must not be negative.
func Frequencies(ev []float64) []float64 {
	f := make([]float64, len(ev))
	for i, v := range ev {
		f[i] = math.Sqrt(math.Max(v, 0))
	}
	return f
}

//FreeEnergy returns the classical free energy of the harmonic
//oscillators with angular frequencies omega at temperature T, T*sum(ln(omega/T)),
//in units where Planck's constant over 2 pi is 1. Zero frequencies are skipped.
func FreeEnergy(omega []float64, T float64) float64 {
	a := 0.0
	for _, w := range omega {
		if w > 0 {
			a += T * math.Log(w/T)
		}
	}
	return a
}
