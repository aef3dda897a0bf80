/*
 * matrix.go, part of gomolsim.
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
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in D-dimensional space, stored row-major.
//Within the package it is understood that a "vector" is a row, i.e. the
//cartesian coordinates of one point. Unlike a mat.Dense, a Matrix can have
//0 rows, which is the normal state of an empty box.
type Matrix struct {
	data []float64
	dim  int
}

//Zeros returns a zero-filled Matrix with n vectors of dimension dim.
func Zeros(n, dim int) *Matrix {
	if dim <= 0 || n < 0 {
		panic(ErrShape)
	}
	return &Matrix{data: make([]float64, n*dim), dim: dim}
}

//NewMatrix generates and returns a Matrix with dim columns from data.
//data is not copied.
func NewMatrix(data []float64, dim int) (*Matrix, error) {
	if dim <= 0 {
		return nil, Error{fmt.Sprintf("Invalid dimension %d", dim), []string{"NewMatrix"}, true}
	}
	l := len(data)
	if l%dim != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d: %d", l, dim, l%dim), []string{"NewMatrix"}, true}
	}
	return &Matrix{data: data, dim: dim}, nil
}

//NVecs returns the number of vectors (rows) in the matrix.
func (F *Matrix) NVecs() int {
	return len(F.data) / F.dim
}

//Dim returns the dimension of each vector.
func (F *Matrix) Dim() int { return F.dim }

//RawData returns the underlying row-major slice. Changes to it are reflected
//in the matrix.
func (F *Matrix) RawData() []float64 { return F.data }

//At returns the j component of the ith vector.
func (F *Matrix) At(i, j int) float64 {
	return F.data[i*F.dim+j]
}

//Set sets the j component of the ith vector to v.
func (F *Matrix) Set(i, j int, v float64) {
	F.data[i*F.dim+j] = v
}

//VecView returns a view of the ith vector. Changes in the view are
//reflected in the matrix and vice-versa, until the matrix grows.
func (F *Matrix) VecView(i int) Vec {
	if i < 0 || i >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	return Vec(F.data[i*F.dim : (i+1)*F.dim : (i+1)*F.dim])
}

//SetVec copies v into the ith vector of the receiver.
func (F *Matrix) SetVec(i int, v Vec) {
	if len(v) != F.dim {
		panic(ErrShape)
	}
	copy(F.VecView(i), v)
}

//SomeVecs returns a matrix with copies of the vectors in clist.
func (F *Matrix) SomeVecs(clist []int) *Matrix {
	r := Zeros(len(clist), F.dim)
	for k, i := range clist {
		copy(r.VecView(k), F.VecView(i))
	}
	return r
}

//SetVecs sets the vectors of the receiver listed in clist to
//the vectors of A, in order.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.dim != F.dim || A.NVecs() < len(clist) {
		panic(ErrShape)
	}
	for k, i := range clist {
		copy(F.VecView(i), A.VecView(k))
	}
}

//Append adds v as the last vector of the matrix and returns its index.
func (F *Matrix) Append(v Vec) int {
	if len(v) != F.dim {
		panic(ErrShape)
	}
	F.data = append(F.data, v...)
	return F.NVecs() - 1
}

//SwapRemove removes the ith vector by moving the last vector into its place.
//It returns the former index of the vector that was moved, which is i itself
//when i was the last one.
func (F *Matrix) SwapRemove(i int) int {
	last := F.NVecs() - 1
	if i < 0 || i > last {
		panic(ErrIndexOutOfRange)
	}
	if i != last {
		copy(F.VecView(i), F.VecView(last))
	}
	F.data = F.data[:last*F.dim]
	return last
}

//Resize changes the number of vectors to n, keeping the content of the first
//min(n, NVecs()) of them. New vectors are zero.
func (F *Matrix) Resize(n int) {
	l := n * F.dim
	if l <= cap(F.data) {
		old := len(F.data)
		F.data = F.data[:l]
		for i := old; i < l; i++ {
			F.data[i] = 0
		}
		return
	}
	d := make([]float64, l, l+l/4)
	copy(d, F.data)
	F.data = d
}

//Zero sets all the elements to 0.
func (F *Matrix) Zero() {
	for i := range F.data {
		F.data[i] = 0
	}
}

//Copy puts a copy of A in the receiver, which is resized if needed.
func (F *Matrix) Copy(A *Matrix) {
	if A.dim != F.dim {
		panic(ErrShape)
	}
	F.Resize(A.NVecs())
	copy(F.data, A.data)
}

//Clone returns a copy of the receiver.
func (F *Matrix) Clone() *Matrix {
	d := make([]float64, len(F.data))
	copy(d, F.data)
	return &Matrix{data: d, dim: F.dim}
}

//Dense returns a gonum view of the matrix, which shares its data. It returns
//nil for an empty matrix, which gonum can't represent.
func (F *Matrix) Dense() *mat.Dense {
	n := F.NVecs()
	if n == 0 {
		return nil
	}
	return mat.NewDense(n, F.dim, F.data)
}

//String returns a string representation of the matrix, one vector per line.
func (F *Matrix) String() string {
	n := F.NVecs()
	s := make([]string, n)
	for i := 0; i < n; i++ {
		s[i] = F.VecView(i).String()
	}
	return strings.Join(s, "\n")
}
