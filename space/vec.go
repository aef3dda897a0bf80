/*
 * vec.go, part of gomolsim.
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

//Package space provides the D-dimensional vectors, coordinate matrices and
//periodic boundaries on which the rest of gomolsim is built.
package space

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

//Vec is a point or displacement in D-dimensional space. All the operators
//work in place on the receiver, so a Vec obtained from Matrix.VecView
//modifies the matrix.
type Vec []float64

//NewVec returns a zero vector of dimension dim.
func NewVec(dim int) Vec {
	return make(Vec, dim)
}

//Dim returns the dimension of the vector
func (V Vec) Dim() int { return len(V) }

//E sets the receiver to a copy of A.
func (V Vec) E(A Vec) {
	if len(A) != len(V) {
		panic(ErrShape)
	}
	copy(V, A)
}

//PE adds A to the receiver.
func (V Vec) PE(A Vec) {
	floats.Add(V, A)
}

//ME subtracts A from the receiver.
func (V Vec) ME(A Vec) {
	floats.Sub(V, A)
}

//TE multiplies the receiver by s.
func (V Vec) TE(s float64) {
	floats.Scale(s, V)
}

//PEa1Tv1 adds a*A to the receiver.
func (V Vec) PEa1Tv1(a float64, A Vec) {
	floats.AddScaled(V, a, A)
}

//Ev1Mv2 sets the receiver to A-B.
func (V Vec) Ev1Mv2(A, B Vec) {
	floats.SubTo(V, A, B)
}

//Zero sets all the components to 0.
func (V Vec) Zero() {
	for i := range V {
		V[i] = 0
	}
}

//Dot returns the scalar product of the receiver and A.
func (V Vec) Dot(A Vec) float64 {
	return floats.Dot(V, A)
}

//Squared returns the square of the norm.
func (V Vec) Squared() float64 {
	return floats.Dot(V, V)
}

//Norm returns the euclidean norm.
func (V Vec) Norm() float64 {
	return floats.Norm(V, 2)
}

//Normalize divides the receiver by its norm. A zero vector is left untouched.
func (V Vec) Normalize() {
	n := V.Norm()
	if n == 0 {
		return
	}
	V.TE(1 / n)
}

//IsFinite returns false if any component is NaN or infinite.
func (V Vec) IsFinite() bool {
	for _, v := range V {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

//Copy returns a new vector with the same components as the receiver.
func (V Vec) Copy() Vec {
	r := make(Vec, len(V))
	copy(r, V)
	return r
}

func (V Vec) String() string {
	s := make([]string, len(V))
	for i, v := range V {
		s[i] = fmt.Sprintf("%8.4f", v)
	}
	return "[" + strings.Join(s, " ") + "]"
}

//Cross puts the cross product of A and B in dst. Only defined
//for 3-dimensional vectors.
func Cross(dst, A, B Vec) {
	if len(A) != 3 || len(B) != 3 || len(dst) != 3 {
		panic(ErrNoCrossProduct)
	}
	x := A[1]*B[2] - A[2]*B[1]
	y := A[2]*B[0] - A[0]*B[2]
	z := A[0]*B[1] - A[1]*B[0]
	dst[0], dst[1], dst[2] = x, y, z
}

//Angle returns the angle between the vectors A and B, in radians.
//The cosine is clamped to [-1,1] so rounding errors for (anti)parallel
//vectors don't produce NaN.
func Angle(A, B Vec) float64 {
	norms := A.Norm() * B.Norm()
	if norms == 0 {
		return 0
	}
	c := A.Dot(B) / norms
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}
