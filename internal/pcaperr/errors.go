// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package pcaperr defines the error kinds shared by every pcapgraph
// component (spec §7) and a small offset-carrying error type in the
// style of a parse error.
package pcaperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is an internal integer code of error instead of a string message,
// mirroring the teacher's ErrorCode.
type Kind int

const (
	Ok Kind = iota
	MissingToolchain
	UnsupportedFormat
	BadMagic
	TruncatedRecord
	UnsupportedLinkType
	UnsupportedIpVersion
	TimestampOutOfRange
	EmptyIntersection
	BoundaryNotFound
	InsufficientInputs
	FilesystemError
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "Ok"
	case MissingToolchain:
		return "MissingToolchain"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case BadMagic:
		return "BadMagic"
	case TruncatedRecord:
		return "TruncatedRecord"
	case UnsupportedLinkType:
		return "UnsupportedLinkType"
	case UnsupportedIpVersion:
		return "UnsupportedIpVersion"
	case TimestampOutOfRange:
		return "TimestampOutOfRange"
	case EmptyIntersection:
		return "EmptyIntersection"
	case BoundaryNotFound:
		return "BoundaryNotFound"
	case InsufficientInputs:
		return "InsufficientInputs"
	case FilesystemError:
		return "FilesystemError"
	case InternalInvariant:
		return "InternalInvariant"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ExitCode maps a Kind onto the CLI exit codes of spec §6.
func (k Kind) ExitCode() int {
	switch k {
	case Ok:
		return 0
	case InsufficientInputs:
		return 2
	case MissingToolchain:
		return 3
	case UnsupportedFormat, BadMagic, TruncatedRecord, UnsupportedLinkType,
		UnsupportedIpVersion, TimestampOutOfRange, EmptyIntersection,
		BoundaryNotFound, FilesystemError:
		return 4
	case InternalInvariant:
		return 5
	}
	return 1
}

// Error carries a Kind, an optional byte offset where the fault was
// detected, and the underlying cause.
type Error struct {
	Kind   Kind
	Offset int64
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	if e.Offset != 0 {
		return fmt.Sprintf("%s: at byte %d: %s", e.Kind, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given Kind wrapping err.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// At builds an Error of the given Kind at a specific byte offset.
func At(kind Kind, offset int64, err error) *Error {
	return &Error{Kind: kind, Offset: offset, Err: err}
}

// Wrap attaches additional context to err without losing its Kind, using
// pkg/errors so callers can still retrieve the original Error with
// errors.As.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Of extracts the Kind carried by err, if any, defaulting to
// InternalInvariant when err does not wrap a *Error.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalInvariant
}
