/*
 * errors.go, part of gomolsim.
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

package traj

import (
	"errors"
	"fmt"

	molsim "github.com/rmera/gomolsim"
)

//Error is the error type for trajectory files. It satisfies molsim.Decorated.
type Error struct {
	message  string
	filename string //the file that has problems
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("trajectory file %s error: %s", err.filename, err.message)
}

//Decorate adds dec to the decorations of the error and returns them.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the file associated to the error.
func (err Error) FileName() string { return err.filename }

func (err Error) Critical() bool { return err.critical }

func errDecorate(err error, caller string) error {
	return molsim.ErrDecorate(err, caller)
}

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the trajectory file or frame"
)

//LastFrameError is returned by Reader.Next when the trajectory has no more frames.
//It is not an actual error.
type LastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing. It marks the type.
func (E *LastFrameError) NormalLastFrameTermination() {}

func (E *LastFrameError) FileName() string { return E.fileName }

func (E *LastFrameError) Error() string { return "EOF" }

func (E *LastFrameError) Critical() bool { return false }

func (E *LastFrameError) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

func newLastFrameError(filename, caller string) *LastFrameError {
	return &LastFrameError{fileName: filename, deco: []string{caller}}
}

//IsLastFrame returns true if err signals the normal end of a trajectory.
func IsLastFrame(err error) bool {
	var l *LastFrameError
	return errors.As(err, &l)
}
