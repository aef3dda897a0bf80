/*
 * pairdistance.go, part of gomolsim.
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

package meter

import (
	"math"

	molsim "github.com/rmera/gomolsim"
	"github.com/rmera/gomolsim/histo"
	"github.com/rmera/gomolsim/space"
)

//PairDistance collects histograms of the minimum-image distances between
//atoms, one for each pair of atom types, from which it obtains radial
//distribution functions.
type PairDistance struct {
	box     *molsim.Box
	rmax    float64
	nbins   int
	h       *histo.Matrix
	samples int
	volume  float64 //sum of the volumes at each sample
	counts  []float64
	dr      space.Vec
}

//NewPairDistance returns a pair-distance meter for distances up to rmax, in nbins
//bins, for the atom types registered in box.
func NewPairDistance(box *molsim.Box, rmax float64, nbins int) *PairDistance {
	P := &PairDistance{box: box, rmax: rmax, nbins: nbins, dr: space.NewVec(box.Dim())}
	P.Reset()
	return P
}

//Reset discards the data collected.
func (P *PairDistance) Reset() {
	n := P.box.NTypes()
	P.h = histo.NewMatrix(n, n, histo.Uniform(0, P.rmax, P.nbins))
	P.h.Fill()
	P.samples = 0
	P.volume = 0
	P.counts = make([]float64, n*n)
}

//Sample adds the distances in the current configuration. It has the
//signature of an integrator listener.
func (P *PairDistance) Sample(step int64) {
	n := P.box.NTypes()
	if n*n != len(P.counts) {
		panic(molsim.ErrShape)
	}
	b := P.box.Boundary()
	rmax2 := P.rmax * P.rmax
	for i := 0; i < P.box.NAtoms(); i++ {
		ti := P.box.TypeIndex(i)
		P.counts[ti*n+ti]++
		for j := i + 1; j < P.box.NAtoms(); j++ {
			P.dr.Ev1Mv2(P.box.Position(j), P.box.Position(i))
			b.NearestImage(P.dr)
			r2 := P.dr.Squared()
			if r2 >= rmax2 {
				continue
			}
			r := math.Sqrt(r2)
			tj := P.box.TypeIndex(j)
			a, c := ti, tj
			if a > c {
				a, c = c, a
			}
			P.h.View(a, c).AddData(r)
		}
	}
	P.samples++
	P.volume += b.Volume()
}

//Histograms returns the raw histograms. Only the elements a,b with a<=b are filled.
func (P *PairDistance) Histograms() *histo.Matrix { return P.h }

//Samples returns the number of configurations sampled.
func (P *PairDistance) Samples() int { return P.samples }

//RDF returns the bin centers and the radial distribution function g(r) between
//types a and b, the pair counts divided by those of an ideal gas at the same
//density.
func (P *PairDistance) RDF(a, b int) ([]float64, []float64) {
	if a > b {
		a, b = b, a
	}
	n := P.box.NTypes()
	d := P.h.View(a, b)
	centers := d.Centers()
	g := make([]float64, len(centers))
	if P.samples == 0 {
		return centers, g
	}
	na := P.counts[a*n+a] / float64(P.samples)
	nb := P.counts[b*n+b] / float64(P.samples)
	pairs := na * nb
	if a == b {
		pairs = na * (na - 1) / 2
	}
	vavg := P.volume / float64(P.samples)
	div := d.CopyDividers()
	dim := P.box.Dim()
	for k, c := range d.View() {
		shell := ballVolume(div[k+1], dim) - ballVolume(div[k], dim)
		ideal := pairs * shell / vavg * float64(P.samples)
		if ideal > 0 {
			g[k] = c / ideal
		}
	}
	return centers, g
}

func ballVolume(r float64, dim int) float64 {
	switch dim {
	case 1:
		return 2 * r
	case 2:
		return math.Pi * r * r
	}
	return 4 * math.Pi / 3 * r * r * r
}
