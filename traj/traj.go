/*
 * traj.go, part of gomolsim.
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

//Package traj reads and writes configurations in a simple compressed text
//format, one frame per configuration.
//
//A file starts with a header of key=value lines, which must include the
//precision, "prec", and ends with the line "** N D", N being the number of
//atoms per frame and D the dimension. Each frame has then N lines with D
//integers, the coordinates multiplied by 10^prec and rounded, followed by a
//line starting with "*". The "*" can be followed by the D box widths of a
//rectangular box, or by the D*D elements, by rows, of the matrix whose columns
//are the edges of a deformable box.
//
//Files are compressed with z-standard unless their name ends in ".gz", in which
//case gzip is used, or in ".txt", in which case they are not compressed.
package traj

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rmera/gomolsim/space"
	"gonum.org/v1/gonum/mat"
)

//DefaultPrec is the number of decimal digits kept when no precision is given.
const DefaultPrec = 3

type compression int

const (
	useZstd compression = iota
	useGzip
	useNone
)

func compressionFor(name string) compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return useGzip
	case ".txt":
		return useNone
	default:
		return useZstd
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

//zstd.Decoder's Close returns nothing.
type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

//Writer writes frames to a trajectory file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	natoms    int
	dim       int
	filename  string
	writeable bool
	prec      int
	mult      float64
	line      []byte
}

//NewWriter creates the file name and writes the header of a trajectory of
//natoms atoms in dim dimensions. The precision is taken from the "prec" key of
//header, if present, and DefaultPrec is used otherwise.
func NewWriter(name string, natoms, dim int, header map[string]string) (*Writer, error) {
	if natoms < 0 || dim < 1 {
		return nil, Error{fmt.Sprintf("%d atoms in %d dimensions", natoms, dim), name, []string{"NewWriter"}, true}
	}
	W := &Writer{natoms: natoms, dim: dim, filename: name, prec: DefaultPrec}
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec >= 0 {
			W.prec = prec
		} else {
			log.Printf("Invalid precision %q for trajectory %s. Will use %d", p, name, DefaultPrec)
		}
	}
	W.mult = math.Pow(10, float64(W.prec))
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	switch compressionFor(name) {
	case useGzip:
		W.h = gzip.NewWriter(W.f)
	case useNone:
		W.h = nopWriteCloser{W.f}
	default:
		W.h, err = zstd.NewWriter(W.f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			W.f.Close()
			return nil, Error{"Can't start compression " + err.Error(), name, []string{"NewWriter"}, true}
		}
	}
	W.w = bufio.NewWriter(W.h)
	keys := make([]string, 0, len(header)+1)
	for k := range header {
		if k != "prec" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprintf(W.w, "prec=%d\n", W.prec)
	for _, k := range keys {
		fmt.Fprintf(W.w, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(W.w, "** %d %d\n", natoms, dim)
	W.writeable = true
	return W, nil
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int { return W.natoms }

//WNext writes a frame with the coordinates and, unless it is nil, the box.
func (W *Writer) WNext(coords *space.Matrix, box space.Boundary) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if coords == nil {
		return Error{NilCoordinates, W.filename, []string{"WNext"}, true}
	}
	if coords.NVecs() != W.natoms || coords.Dim() != W.dim {
		return Error{fmt.Sprintf("%dx%d coordinates given, but %dx%d expected", coords.NVecs(), coords.Dim(), W.natoms, W.dim), W.filename, []string{"WNext"}, true}
	}
	for i := 0; i < W.natoms; i++ {
		W.line = W.line[:0]
		for j, v := range coords.VecView(i) {
			if j > 0 {
				W.line = append(W.line, ' ')
			}
			W.line = strconv.AppendInt(W.line, int64(math.RoundToEven(v*W.mult)), 10)
		}
		W.line = append(W.line, '\n')
		if _, err := W.w.Write(W.line); err != nil {
			return Error{err.Error(), W.filename, []string{"WNext"}, true}
		}
	}
	return W.writeBox(box)
}

func (W *Writer) writeBox(box space.Boundary) error {
	W.line = append(W.line[:0], '*')
	if box != nil {
		if box.Dim() != W.dim {
			return Error{"box dimension doesn't match the trajectory's", W.filename, []string{"writeBox"}, true}
		}
		var vals []float64
		if _, ok := box.(*space.Rectangular); ok {
			vals = box.Widths()
		} else {
			vals = mat.DenseCopyOf(box.Edges()).RawMatrix().Data
		}
		for _, v := range vals {
			W.line = append(W.line, ' ')
			W.line = strconv.AppendFloat(W.line, v, 'g', -1, 64)
		}
	}
	W.line = append(W.line, '\n')
	_, err := W.w.Write(W.line)
	if err != nil {
		return Error{err.Error(), W.filename, []string{"writeBox"}, true}
	}
	return nil
}

//Close flushes the pending data and closes the file. The writer can't be used after this.
func (W *Writer) Close() error {
	if W == nil || !W.writeable {
		return nil
	}
	W.writeable = false
	err := W.w.Flush()
	if err2 := W.h.Close(); err == nil {
		err = err2
	}
	if err2 := W.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return nil
}

//Reader reads the frames of a trajectory file.
type Reader struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	dim      int
	filename string
	mult     float64
	readable bool
}

//New opens name for reading and returns the reader and the key=value pairs of
//the header.
func New(name string) (*Reader, map[string]string, error) {
	R := &Reader{filename: name, natoms: -1}
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"New"}, true}
	}
	buf := bufio.NewReader(R.f)
	switch compressionFor(name) {
	case useGzip:
		R.dec, err = gzip.NewReader(buf)
	case useNone:
		R.dec = io.NopCloser(buf)
	default:
		var z *zstd.Decoder
		z, err = zstd.NewReader(buf)
		if err == nil {
			R.dec = zstdReadCloser{z}
		}
	}
	if err != nil {
		R.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"New"}, true}
	}
	R.h = bufio.NewReader(R.dec)
	m, err := R.header()
	if err != nil {
		R.dec.Close()
		R.f.Close()
		return nil, nil, errDecorate(err, "New")
	}
	R.readable = true
	return R, m, nil
}

func (R *Reader) header() (map[string]string, error) {
	m := make(map[string]string)
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, Error{"Can't read header: " + err.Error(), R.filename, []string{"header"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			f := strings.Fields(str)
			if len(f) != 3 {
				return nil, Error{fmt.Sprintf("Malformed header termination '%s'", str), R.filename, []string{"header"}, true}
			}
			n, err1 := strconv.Atoi(f[1])
			d, err2 := strconv.Atoi(f[2])
			if err1 != nil || err2 != nil || n < 0 || d < 1 {
				return nil, Error{fmt.Sprintf("Can't read atoms and dimension from '%s'", str), R.filename, []string{"header"}, true}
			}
			R.natoms, R.dim = n, d
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			return nil, Error{fmt.Sprintf("Malformed header line '%s'", str), R.filename, []string{"header"}, true}
		}
		m[k] = v
	}
	prec := DefaultPrec
	if p, ok := m["prec"]; ok {
		var err error
		prec, err = strconv.Atoi(p)
		if err != nil || prec < 0 {
			return nil, Error{fmt.Sprintf("Invalid precision '%s'", p), R.filename, []string{"header"}, true}
		}
	}
	R.mult = math.Pow(10, float64(prec))
	return m, nil
}

//Readable returns true if it is possible to call Next on the reader.
func (R *Reader) Readable() bool { return R.readable }

//Len returns the number of atoms per frame.
func (R *Reader) Len() int { return R.natoms }

//Dim returns the dimension of the coordinates.
func (R *Reader) Dim() int { return R.dim }

//Next reads the next frame into c, which can be nil to skip it, and returns
//the box of the frame, or nil if the frame has none. After the last frame, it
//returns a LastFrameError and closes the reader.
func (R *Reader) Next(c *space.Matrix) (space.Boundary, error) {
	if !R.readable {
		return nil, Error{TrajUnIniRead, R.filename, []string{"Next"}, true}
	}
	if c != nil && (c.NVecs() != R.natoms || c.Dim() != R.dim) {
		return nil, Error{fmt.Sprintf("%dx%d matrix given, but the frames are %dx%d", c.NVecs(), c.Dim(), R.natoms, R.dim), R.filename, []string{"Next"}, true}
	}
	for i := 0; i < R.natoms; i++ {
		b, err := R.h.ReadString('\n')
		if err != nil {
			if err == io.EOF && i == 0 && b == "" {
				R.Close()
				return nil, newLastFrameError(R.filename, "Next")
			}
			return nil, Error{ReadError + ": " + err.Error(), R.filename, []string{"Next"}, true}
		}
		fields := strings.Fields(b)
		if len(fields) != R.dim {
			return nil, Error{fmt.Sprintf("%s: %d fields in coordinate line", WrongFormat, len(fields)), R.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		v := c.VecView(i)
		for j, s := range fields {
			x, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("Can't parse coordinate %d (%s): %s", j, s, err.Error()), R.filename, []string{"Next"}, true}
			}
			v[j] = float64(x) / R.mult
		}
	}
	s, err := R.h.ReadString('\n')
	if err != nil && s == "" {
		return nil, Error{"Can't read the frame termination mark: " + err.Error(), R.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		return nil, Error{WrongFormat + ": wrong number of atoms in frame", R.filename, []string{"Next"}, true}
	}
	box, err := R.parseBox(strings.Fields(s)[1:])
	if err != nil {
		return nil, errDecorate(err, "Next")
	}
	return box, nil
}

func (R *Reader) parseBox(fields []string) (space.Boundary, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	vals := make([]float64, len(fields))
	for i, s := range fields {
		var err error
		vals[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, Error{"Can't read box: " + err.Error(), R.filename, []string{"parseBox"}, true}
		}
	}
	var b space.Boundary
	var err error
	switch len(vals) {
	case R.dim:
		b, err = space.NewRectangular(vals...)
	case R.dim * R.dim:
		b, err = space.NewDeformable(mat.NewDense(R.dim, R.dim, vals))
	default:
		return nil, Error{fmt.Sprintf("%d numbers in box line", len(vals)), R.filename, []string{"parseBox"}, true}
	}
	if err != nil {
		return nil, Error{"Invalid box: " + err.Error(), R.filename, []string{"parseBox"}, true}
	}
	return b, nil
}

//Close closes the file and marks the reader as unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.dec.Close()
	R.f.Close()
	R.readable = false
}

//ReadConfiguration returns the coordinates and the box in the first frame of
//the trajectory name, and its header.
func ReadConfiguration(name string) (*space.Matrix, space.Boundary, map[string]string, error) {
	R, header, err := New(name)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "ReadConfiguration")
	}
	defer R.Close()
	c := space.Zeros(R.Len(), R.Dim())
	box, err := R.Next(c)
	if err != nil {
		if IsLastFrame(err) {
			return nil, nil, nil, Error{"no frames in file", name, []string{"ReadConfiguration"}, true}
		}
		return nil, nil, nil, errDecorate(err, "ReadConfiguration")
	}
	return c, box, header, nil
}
