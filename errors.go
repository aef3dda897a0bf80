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

package molsim

import (
	"errors"
	"fmt"
)

//Error is the error type of gomolsim. A critical Error signals a
//configuration problem, something that makes the simulation meaningless
//and that must stop it before it starts.
//Overlaps found during a simulation are not errors and are never reported
//with this type, they are carried as infinite energies.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//NewError returns a non-critical error with the given message
//and the name of the function that originated it.
func NewError(message, caller string) Error {
	return Error{message: message, deco: []string{caller}}
}

//ConfigError returns a critical error with the given message and the name
//of the function that originated it.
func ConfigError(message, caller string) Error {
	return Error{message: message, deco: []string{caller}, critical: true}
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return fmt.Sprintf("gomolsim: %s", err.message)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns true if the error is a configuration error.
func (err Error) Critical() bool { return err.critical }

//Decorated is the interface for the errors of gomolsim's packages. The Decorate
//method allows to add and retrieve info from the error, without changing its
//type or wrapping it around something else.
type Decorated interface {
	error
	Decorate(string) []string
	Critical() bool
}

//IsConfigError returns true if any error in the chain of err is a critical
//gomolsim error, from any of the packages.
func IsConfigError(err error) bool {
	var d Decorated
	if errors.As(err, &d) {
		return d.Critical()
	}
	return false
}

//ErrDecorate decorates err with the caller's name, if err is a gomolsim error, and returns it.
//Other errors are wrapped.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if d, ok := err.(Decorated); ok {
		d.Decorate(caller)
		return d
	}
	return fmt.Errorf("%s: %w", caller, err)
}

//Messages for configuration errors.
const (
	ErrCutoffTooLarge    = "potential range exceeds half the smallest box width"
	ErrDimensionMismatch = "dimension mismatch"
	ErrInitialOverlap    = "initial configuration has overlapping atoms"
	ErrNoAtoms           = "box has no atoms"
	ErrBadParameter      = "invalid parameter"
)

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrAtomIndex       = PanicMsg("gomolsim: Atom index out of range")
	ErrForeignMolecule = PanicMsg("gomolsim: Molecule doesn't belong to this box")
	ErrShape           = PanicMsg("gomolsim: Dimension mismatch")
)
