/*
 * boundary.go, part of gomolsim.
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

package space

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Boundary is a periodic simulation cell centered at the origin. All
//methods must be safe for concurrent use as long as the boundary is not
//being modified.
type Boundary interface {
	Dim() int
	//NearestImage replaces dr with its minimum-image equivalent.
	NearestImage(dr Vec)
	//CentralImage moves r into the central cell.
	CentralImage(r Vec)
	Volume() float64
	//Widths returns the perpendicular distance between opposite faces
	//along each axis of the cell.
	Widths() Vec
	//Fractional puts in dst the coordinates of r in units of the cell edges.
	Fractional(dst, r Vec)
	//Edges returns a new matrix with the edge vectors as columns.
	Edges() *mat.Dense
	//Scale multiplies all edges by f.
	Scale(f float64)
	Copy() Boundary
}

//MinWidth returns the smallest perpendicular width of b.
func MinWidth(b Boundary) float64 {
	w := b.Widths()
	m := w[0]
	for _, v := range w[1:] {
		m = math.Min(m, v)
	}
	return m
}

//wrap returns x shifted by an integer multiple of l into [-l/2, l/2).
func wrap(x, l float64) float64 {
	return x - l*math.Floor(x/l+0.5)
}

//Rectangular is a periodic box with orthogonal edges.
type Rectangular struct {
	edges Vec
}

//NewRectangular returns a rectangular periodic box with the given edge
//lengths, one per dimension.
func NewRectangular(edges ...float64) (*Rectangular, error) {
	if len(edges) == 0 {
		return nil, Error{"No edges given", []string{"NewRectangular"}, true}
	}
	for i, v := range edges {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, Error{fmt.Sprintf("Invalid length %g for edge %d", v, i), []string{"NewRectangular"}, true}
		}
	}
	return &Rectangular{edges: Vec(edges).Copy()}, nil
}

//NewCube returns a cubic box of dimension dim and edge l.
func NewCube(dim int, l float64) (*Rectangular, error) {
	e := make([]float64, dim)
	for i := range e {
		e[i] = l
	}
	return NewRectangular(e...)
}

func (R *Rectangular) Dim() int { return len(R.edges) }

func (R *Rectangular) NearestImage(dr Vec) {
	for i, l := range R.edges {
		dr[i] = wrap(dr[i], l)
	}
}

func (R *Rectangular) CentralImage(r Vec) {
	R.NearestImage(r)
}

func (R *Rectangular) Volume() float64 {
	v := 1.0
	for _, l := range R.edges {
		v *= l
	}
	return v
}

func (R *Rectangular) Widths() Vec { return R.edges.Copy() }

func (R *Rectangular) Fractional(dst, r Vec) {
	for i, l := range R.edges {
		dst[i] = r[i] / l
	}
}

func (R *Rectangular) Edges() *mat.Dense {
	d := len(R.edges)
	h := mat.NewDense(d, d, nil)
	for i, l := range R.edges {
		h.Set(i, i, l)
	}
	return h
}

func (R *Rectangular) Scale(f float64) { R.edges.TE(f) }

//SetEdges replaces the edge lengths of the box.
func (R *Rectangular) SetEdges(edges ...float64) {
	if len(edges) != len(R.edges) {
		panic(ErrShape)
	}
	copy(R.edges, edges)
}

func (R *Rectangular) Copy() Boundary {
	return &Rectangular{edges: R.edges.Copy()}
}

//maxDeformableDim is the largest dimension supported by Deformable.
const maxDeformableDim = 3

//Deformable is a periodic cell with arbitrary (triclinic) edge vectors.
type Deformable struct {
	dim    int
	h      []float64 //row-major, edge vectors as columns
	hinv   []float64
	images []Vec //h*o for every o in {-1,0,1}^dim except 0
}

//NewDeformable returns a periodic cell whose edge vectors are the columns of h.
func NewDeformable(h mat.Matrix) (*Deformable, error) {
	r, c := h.Dims()
	if r != c || r == 0 || r > maxDeformableDim {
		return nil, Error{fmt.Sprintf("Cell matrix must be square with at most %d rows, got %dx%d", maxDeformableDim, r, c), []string{"NewDeformable"}, true}
	}
	D := new(Deformable)
	D.dim = r
	if err := D.setCell(h); err != nil {
		return nil, err
	}
	return D, nil
}

func (D *Deformable) setCell(h mat.Matrix) error {
	hd := mat.DenseCopyOf(h)
	var inv mat.Dense
	if err := inv.Inverse(hd); err != nil {
		return Error{fmt.Sprintf("Can't invert cell matrix: %s", err.Error()), []string{"setCell"}, true}
	}
	D.h = hd.RawMatrix().Data
	D.hinv = inv.RawMatrix().Data
	D.images = D.images[:0]
	o := make([]int, D.dim)
	for i := range o {
		o[i] = -1
	}
	for {
		nonzero := false
		img := NewVec(D.dim)
		for j, v := range o {
			if v != 0 {
				nonzero = true
			}
			for i := 0; i < D.dim; i++ {
				img[i] += D.h[i*D.dim+j] * float64(v)
			}
		}
		if nonzero {
			D.images = append(D.images, img)
		}
		k := 0
		for ; k < D.dim; k++ {
			o[k]++
			if o[k] <= 1 {
				break
			}
			o[k] = -1
		}
		if k == D.dim {
			break
		}
	}
	return nil
}

func (D *Deformable) Dim() int { return D.dim }

//mulTo puts m*v in dst. dst and v can't be the same.
func mulTo(dst []float64, m []float64, v []float64, dim int) {
	for i := 0; i < dim; i++ {
		s := 0.0
		for j := 0; j < dim; j++ {
			s += m[i*dim+j] * v[j]
		}
		dst[i] = s
	}
}

func (D *Deformable) NearestImage(dr Vec) {
	var sa, ca [maxDeformableDim]float64
	s := sa[:D.dim]
	c := ca[:D.dim]
	mulTo(s, D.hinv, dr, D.dim)
	for i := range s {
		s[i] -= math.Floor(s[i] + 0.5)
	}
	mulTo(dr, D.h, s, D.dim)
	//For skewed cells the reduced vector is not always the shortest one,
	//so the neighbouring images are also checked.
	best := dr.Squared()
	bi := -1
	for k, img := range D.images {
		r2 := 0.0
		for i := range c {
			x := dr[i] + img[i]
			r2 += x * x
		}
		if r2 < best {
			best = r2
			bi = k
		}
	}
	if bi >= 0 {
		dr.PE(D.images[bi])
	}
}

func (D *Deformable) CentralImage(r Vec) {
	var sa [maxDeformableDim]float64
	s := sa[:D.dim]
	mulTo(s, D.hinv, r, D.dim)
	for i := range s {
		s[i] -= math.Floor(s[i] + 0.5)
	}
	mulTo(r, D.h, s, D.dim)
}

func (D *Deformable) Volume() float64 {
	return math.Abs(mat.Det(mat.NewDense(D.dim, D.dim, D.h)))
}

func (D *Deformable) Widths() Vec {
	w := NewVec(D.dim)
	for i := range w {
		row := Vec(D.hinv[i*D.dim : (i+1)*D.dim])
		w[i] = 1 / row.Norm()
	}
	return w
}

func (D *Deformable) Fractional(dst, r Vec) {
	mulTo(dst, D.hinv, r, D.dim)
}

func (D *Deformable) Edges() *mat.Dense {
	h := make([]float64, len(D.h))
	copy(h, D.h)
	return mat.NewDense(D.dim, D.dim, h)
}

func (D *Deformable) Scale(f float64) {
	h := D.Edges()
	h.Scale(f, h)
	if err := D.setCell(h); err != nil {
		panic(ErrSingularCell)
	}
}

//SetEdges replaces the cell matrix. The new matrix must have the same dimension.
func (D *Deformable) SetEdges(h mat.Matrix) error {
	r, c := h.Dims()
	if r != D.dim || c != D.dim {
		return Error{"Wrong dimension for cell matrix", []string{"SetEdges"}, true}
	}
	return D.setCell(h)
}

func (D *Deformable) Copy() Boundary {
	n, _ := NewDeformable(mat.NewDense(D.dim, D.dim, D.h))
	return n
}
