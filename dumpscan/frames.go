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
// File Name:  frames.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"strconv"
	"strings"
	"time"
)

// Target is a record whose fields can be assigned by name
type Target interface {
	SetField(field string, value any) error
}

// Assembly is implemented by frames that build a record, so that value
// extraction frames below them know where to store their results
type Assembly interface {
	Record() Target
}

// STANDARD FRAMES

// baseFrame supplies no-op hooks for frames that only need some of them
type baseFrame struct{}

func (baseFrame) Schema() *Schema {
	return emptySchema
}

func (baseFrame) Start() error {
	return nil
}

func (baseFrame) Text(data string) {
}

func (baseFrame) Stop() error {
	return nil
}

// IgnoreFrame swallows an entire subtree without building state. It carries
// no state, so one instance serves every ignored element.
type IgnoreFrame struct {
	baseFrame
}

var ignoreSchema = &Schema{Default: Ignore()}

var ignoreFrame = &IgnoreFrame{}

func (*IgnoreFrame) Schema() *Schema {
	return ignoreSchema
}

// PassFrame accepts any child name and reports each element to the visitor
type PassFrame struct {
	baseFrame
	ctx   *Context
	depth int
	path  []string
	attrs Attrs
}

var passSchema = &Schema{Default: PassThrough()}

func (*PassFrame) Schema() *Schema {
	return passSchema
}

func (f *PassFrame) Start() error {

	if f.ctx != nil && f.ctx.Visit != nil {
		f.ctx.Visit(f.depth, f.path, f.attrs)
	}

	return nil
}

// DocumentFrame sits below the root element and only supplies its schema
type DocumentFrame struct {
	baseFrame
	schema *Schema
}

// NewDocumentFrame wraps the schema for the top of a document
func NewDocumentFrame(schema *Schema) *DocumentFrame {
	return &DocumentFrame{schema: schema}
}

func (f *DocumentFrame) Schema() *Schema {
	return f.schema
}

// VALUE EXTRACTION

// ValueFrame accumulates text and assigns the converted value on close
type ValueFrame struct {
	baseFrame
	name    string
	field   string
	convert Converter
	target  Target
	stk     *Stack
	buffer  strings.Builder
}

func (f *ValueFrame) Text(data string) {
	f.buffer.WriteString(data)
}

func (f *ValueFrame) Stop() error {

	text := strings.TrimSpace(f.buffer.String())

	value, err := f.convert(text)
	if err != nil {
		return &ValueConversionError{Element: f.name, Field: f.field, Text: f.buffer.String(), Path: f.stk.Path(), Err: err}
	}

	if err := f.target.SetField(f.field, value); err != nil {
		return &ValueConversionError{Element: f.name, Field: f.field, Text: f.buffer.String(), Path: f.stk.Path(), Err: err}
	}

	return nil
}

// CONVERTERS

// Identity keeps the trimmed text as a string
func Identity(str string) (any, error) {
	return str, nil
}

// Integer parses a decimal integer
func Integer(str string) (any, error) {
	return strconv.Atoi(str)
}

// Timestamp parses an ISO 8601 timestamp with a Z or numeric offset and
// normalizes it to UTC
func Timestamp(str string) (any, error) {
	return ParseTimestamp(str)
}

// ParseTimestamp is the typed form of Timestamp. Fractional seconds are kept
// when present.
func ParseTimestamp(str string) (time.Time, error) {

	tm, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return time.Time{}, err
	}

	return tm.UTC(), nil
}
