// ===========================================================================
//
//                            PUBLIC DOMAIN NOTICE
//            National Center for Biotechnology Information (NCBI)
//
//  This software/database is a "United States Government Work" under the
//  terms of the United States Copyright Act. It was written as part of
//  the author's official duties as a United States Government employee and
//  thus cannot be copyrighted. This software/database is freely available
//  to the public for use. The National Library of Medicine and the U.S.
//  Government do not place any restriction on its use or reproduction.
//  We would, however, appreciate having the NCBI and the author cited in
//  any work or product based on this material.
//
//  Although all reasonable efforts have been taken to ensure the accuracy
//  and reliability of the software and data, the NLM and the U.S.
//  Government do not and cannot warrant the performance or results that
//  may be obtained by using this software or data. The NLM and the U.S.
//  Government disclaim all warranties, express or implied, including
//  warranties of performance, merchantability or fitness for any particular
//  purpose.
//
// ===========================================================================
//
// File Name:  errors.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is. Every one of them is fatal to the
// scan that produced it.
var (
	// ErrUnhandledElement indicates an element with no mapping and no default in its enclosing frame.
	ErrUnhandledElement = errors.New("unhandled element")
	// ErrStructuralMismatch indicates a close tag that does not match the innermost open element.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrValueConversion indicates element text that could not be converted to its field type.
	ErrValueConversion = errors.New("value conversion failed")
	// ErrTruncated indicates input that ended while elements were still open.
	ErrTruncated = errors.New("truncated input")
	// ErrSyntax indicates markup the tokenizer could not read.
	ErrSyntax = errors.New("xml syntax error")
)

func formatPath(path []string) string {

	if len(path) == 0 {
		return "/"
	}

	return "/" + strings.Join(path, "/")
}

// UnhandledElementError names the offending element and its enclosing frame
type UnhandledElementError struct {
	Element string
	Parent  string
	Path    []string
}

func (e *UnhandledElementError) Error() string {
	return fmt.Sprintf("unhandled element <%s> below <%s> at %s", e.Element, e.Parent, formatPath(e.Path))
}

func (e *UnhandledElementError) Is(target error) bool {
	return target == ErrUnhandledElement
}

// StructuralMismatchError reports a close tag that does not match the
// innermost open element
type StructuralMismatchError struct {
	Expected string
	Found    string
	Path     []string
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("close tag </%s> does not match open element <%s> at %s", e.Found, e.Expected, formatPath(e.Path))
}

func (e *StructuralMismatchError) Is(target error) bool {
	return target == ErrStructuralMismatch
}

// ValueConversionError keeps the raw accumulated text that failed to convert
type ValueConversionError struct {
	Element string
	Field   string
	Text    string
	Path    []string
	Err     error
}

func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("cannot convert <%s> text %q for field %s at %s: %v", e.Element, e.Text, e.Field, formatPath(e.Path), e.Err)
}

func (e *ValueConversionError) Is(target error) bool {
	return target == ErrValueConversion
}

func (e *ValueConversionError) Unwrap() error {
	return e.Err
}

// TruncatedError lists the elements still open when input ended
type TruncatedError struct {
	Path []string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("input ended inside %s", formatPath(e.Path))
}

func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncated
}

// SyntaxError records the byte offset of unreadable markup in the decoded stream
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xml syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
