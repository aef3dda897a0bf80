/*
 * histo.go, part of gomolsim.
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

//Package histo contains histograms with arbitrary bin dividers, and
//matrices of histograms sharing their dividers, such as the pair-distance
//histograms of each pair of atom types in a box.
package histo

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Data is a histogram. Bin i counts the values v with dividers[i] <= v < dividers[i+1].
//Values outside the dividers are not counted, but they are recorded in the total.
type Data struct {
	id         int
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

type jsonData struct {
	ID         int       `json:"id"`
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{
		ID:         D.id,
		Normalized: D.normalized,
		Total:      D.total,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) < 2 || len(a.Histo) != len(a.Dividers)-1 {
		return fmt.Errorf("gomolsim/histo: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.id = a.ID
	D.normalized = a.Normalized
	D.total = a.Total
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

//NewData returns a histogram with the given dividers, which must be sorted and must be
//at least 2. If rawdata is not nil, the histogram is filled with it.
//The ID is -1 unless one is given.
func NewData(dividers []float64, rawdata []float64, ID ...int) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic(ErrDividers)
	}
	d := &Data{id: -1}
	d.dividers = make([]float64, len(dividers))
	copy(d.dividers, dividers)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata)
	}
	if len(ID) > 0 {
		d.id = ID[0]
	}
	return d
}

//Uniform returns dividers for n bins of equal width between min and max.
func Uniform(min, max float64, n int) []float64 {
	return floats.Span(make([]float64, n+1), min, max)
}

func (D *Data) ID() int { return D.id }

//String returns a representation of the histogram in 3 lines of text.
func (D *Data) String() string {
	ret := fmt.Sprintf("ID: %d, Normalized: %v, TotalData: %d\n", D.id, D.normalized, D.total)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

//bin returns the bin for v, or -1 if v is out of range.
func (D *Data) bin(v float64) int {
	if math.IsNaN(v) || v < D.dividers[0] || v >= D.dividers[len(D.dividers)-1] {
		return -1
	}
	return sort.SearchFloat64s(D.dividers, math.Nextafter(v, math.Inf(1))) - 1
}

//AddData adds the given values to the histogram.
func (D *Data) AddData(point ...float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	for _, v := range point {
		if b := D.bin(v); b >= 0 {
			D.histo[b]++
		}
	}
	D.total += len(point)
	if norma {
		D.Normalize()
	}
}

//AddWeighted adds w to the bin of v, and counts v as one value.
func (D *Data) AddWeighted(v, w float64) {
	if D.normalized {
		panic(ErrNormalized)
	}
	if b := D.bin(v); b >= 0 {
		D.histo[b] += w
	}
	D.total++
}

//Total returns the number of values added, including those out of range.
func (D *Data) Total() int { return D.total }

func (D *Data) Normalized() bool { return D.normalized }

//Normalize divides the counts by the number of values added.
func (D *Data) Normalize() { D.normaunnorma(true) }

//UnNormalize undoes Normalize.
func (D *Data) UnNormalize() { D.normaunnorma(false) }

func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := float64(D.total)
	if normalize {
		n = 1 / n
	}
	D.normalized = normalize
	floats.Scale(n, D.histo)
}

//CopyDividers returns a copy of the dividers, in dest if it is given and large enough.
func (D *Data) CopyDividers(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.dividers), dest...)
	copy(d, D.dividers)
	return d
}

//Copy returns a copy of the bin values, in dest if it is given and large enough.
func (D *Data) Copy(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.histo), dest...)
	copy(d, D.histo)
	return d
}

//View returns the bin values, not a copy.
func (D *Data) View() []float64 { return D.histo }

//Centers returns the center of each bin.
func (D *Data) Centers() []float64 {
	c := make([]float64, len(D.histo))
	for i := range c {
		c[i] = 0.5 * (D.dividers[i] + D.dividers[i+1])
	}
	return c
}

func (D *Data) checkMatch(a, b *Data) {
	if !floats.Equal(a.dividers, b.dividers) {
		panic(ErrDividers)
	}
	if len(D.histo) != len(a.histo) {
		D.histo = make([]float64, len(a.histo))
	}
	D.dividers = a.CopyDividers(D.dividers)
}

//Add puts the sum of the histograms a and b in the receiver.
func (D *Data) Add(a, b *Data) {
	D.checkMatch(a, b)
	floats.AddTo(D.histo, a.histo, b.histo)
	D.total = a.total + b.total
}

//Sub puts the difference of the histograms a and b in the receiver. If abs is given
//and true, the absolute value of the difference is used.
func (D *Data) Sub(a, b *Data, abs ...bool) {
	D.checkMatch(a, b)
	floats.SubTo(D.histo, a.histo, b.histo)
	if len(abs) > 0 && abs[0] {
		for i, v := range D.histo {
			D.histo[i] = math.Abs(v)
		}
	}
}

//Sum returns the sum of the bin values.
func (D *Data) Sum() float64 { return floats.Sum(D.histo) }

//ReHisto replaces the content of the histogram with that of rawdata, which is sorted
//in place.
func (D *Data) ReHisto(rawdata []float64) {
	D.normalized = false
	D.total = len(rawdata)
	sort.Float64s(rawdata)
	//stat.Histogram panics for values out of range, so those are cut first.
	maxi := sort.SearchFloat64s(rawdata, D.dividers[len(D.dividers)-1])
	mini := sort.SearchFloat64s(rawdata, D.dividers[0])
	rawdata = rawdata[mini:maxi]
	D.histo = stat.Histogram(nil, D.dividers, rawdata, nil)
}

func getCopySlice(N int, dest ...[]float64) []float64 {
	if len(dest) > 0 && len(dest[0]) >= N {
		return dest[0][:N]
	}
	return make([]float64, N)
}

//Matrix is a square or rectangular matrix of histograms.
type Matrix struct {
	rows, cols int
	d          []*Data   //row-major
	dividers   []float64 //if not nil, all histograms have these dividers
}

//NewMatrix returns a matrix of r rows and c columns with no histograms in it.
//If dividers is not nil, all the histograms of the matrix will share them.
func NewMatrix(r, c int, dividers []float64) *Matrix {
	return &Matrix{rows: r, cols: c, d: make([]*Data, r*c), dividers: dividers}
}

func (M *Matrix) Dims() (int, int) { return M.rows, M.cols }

//CopyDividers returns a copy of the common dividers, or nil if there are none.
func (M *Matrix) CopyDividers(dest ...[]float64) []float64 {
	if M.dividers == nil {
		return nil
	}
	d := getCopySlice(len(M.dividers), dest...)
	copy(d, M.dividers)
	return d
}

func (M *Matrix) String() string {
	ret := fmt.Sprintf("rows:%d cols:%d | Data:\n", M.rows, M.cols)
	t := make([]string, 0, len(M.d))
	for _, v := range M.d {
		if v != nil {
			t = append(t, v.String())
		}
	}
	return ret + strings.Join(t, "\n\n")
}

type jsonMatrix struct {
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	D        []*Data   `json:"data"`
	Dividers []float64 `json:"dividers"`
}

func (M *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonMatrix{Rows: M.rows, Cols: M.cols, D: M.d, Dividers: M.dividers})
}

func (M *Matrix) UnmarshalJSON(b []byte) error {
	var a jsonMatrix
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.D) != a.Rows*a.Cols {
		return fmt.Errorf("gomolsim/histo: %d histograms for a %dx%d matrix", len(a.D), a.Rows, a.Cols)
	}
	M.rows, M.cols, M.d, M.dividers = a.Rows, a.Cols, a.D, a.Dividers
	return nil
}

func (M *Matrix) rc2i(r, c int) int {
	if r < 0 || r >= M.rows || c < 0 || c >= M.cols {
		panic(ErrIndex)
	}
	return M.cols*r + c
}

//Fill puts an empty histogram, with the common dividers, in every element.
func (M *Matrix) Fill() {
	if M.dividers == nil {
		panic(ErrDividers)
	}
	for i := range M.d {
		M.d[i] = NewData(M.dividers, nil, i)
	}
}

//NewHisto puts a new histogram in the r,c element. If dividers is nil, the
//common dividers are used. If the matrix has common dividers that differ from the
//given ones, the common ones are used and a warning is logged.
func (M *Matrix) NewHisto(r, c int, dividers []float64, rawdata []float64) {
	if dividers == nil {
		if M.dividers == nil {
			panic(ErrDividers)
		}
		dividers = M.dividers
	} else if M.dividers != nil && !floats.Equal(M.dividers, dividers) {
		log.Printf("gomolsim/histo: dividers for element %d,%d don't match those of the matrix, which will be used", r, c)
		dividers = M.dividers
	}
	i := M.rc2i(r, c)
	M.d[i] = NewData(dividers, rawdata, i)
}

//View returns the histogram in the r,c element.
func (M *Matrix) View(r, c int) *Data { return M.d[M.rc2i(r, c)] }

//AddData adds values to the histogram in the r,c element.
func (M *Matrix) AddData(r, c int, point ...float64) {
	M.d[M.rc2i(r, c)].AddData(point...)
}
