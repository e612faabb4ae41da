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
// File Name:  stack.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"github.com/rs/zerolog"
	"strings"
)

// HANDLER STACK DISPATCHER

// Frame is the live state of one open element. Frames are created when their
// element opens and discarded when the matching close tag is seen.
type Frame interface {
	// Schema maps child element names to the factories that build their frames
	Schema() *Schema
	// Start runs after the frame is installed as the innermost frame
	Start() error
	// Text receives character data, possibly in several pieces
	Text(data string)
	// Stop runs when the matching close tag arrives, before the frame is removed
	Stop() error
}

// FactoryKind enumerates the closed set of frame builders
type FactoryKind int

const (
	NoKind FactoryKind = iota
	ValueKind
	AssemblerKind
	IgnoreKind
	PassKind
)

func (k FactoryKind) String() string {

	switch k {
	case ValueKind:
		return "value"
	case AssemblerKind:
		return "assembler"
	case IgnoreKind:
		return "ignore"
	case PassKind:
		return "pass"
	}

	return "none"
}

// Converter turns trimmed element text into a field value
type Converter func(string) (any, error)

// AssembleFunc builds a record assembler frame. The stack gives access to the
// enclosing frame and the shared context.
type AssembleFunc func(stk *Stack, name string, attrs Attrs) (Frame, error)

// Factory is a tagged variant selected by Kind. The zero value means no factory.
type Factory struct {
	Kind     FactoryKind
	Field    string
	Convert  Converter
	Assemble AssembleFunc
}

// Value extracts element text into a field of the enclosing frame's record. An
// empty field name uses the element name.
func Value(field string, convert Converter) Factory {

	if convert == nil {
		convert = Identity
	}

	return Factory{Kind: ValueKind, Field: field, Convert: convert}
}

// Assembler builds a nested record assembler frame
func Assembler(fn AssembleFunc) Factory {
	return Factory{Kind: AssemblerKind, Assemble: fn}
}

// Ignore swallows the element and everything below it
func Ignore() Factory {
	return Factory{Kind: IgnoreKind}
}

// PassThrough accepts the element and any descendant, reporting each to the
// context visitor
func PassThrough() Factory {
	return Factory{Kind: PassKind}
}

// Schema is the immutable child mapping of one frame type. Schemas are built
// once, in package variables or by the caller, and are never modified while
// a scan is running.
type Schema struct {
	Elements map[string]Factory
	Default  Factory
}

// Lookup finds the factory for a child element, falling back to the default
func (s *Schema) Lookup(name string) (Factory, bool) {

	if s == nil {
		return Factory{}, false
	}
	if fct, ok := s.Elements[name]; ok && fct.Kind != NoKind {
		return fct, true
	}
	if s.Default.Kind != NoKind {
		return s.Default, true
	}

	return Factory{}, false
}

// emptySchema has no children and no default
var emptySchema = &Schema{}

// Visitor receives every element accepted by a pass-through frame
type Visitor func(depth int, path []string, attrs Attrs)

// Context is the emission sink and shared configuration handed to every
// frame at construction. It is not modified once the stack is built.
type Context struct {
	Emit   func(*Revision)
	Visit  Visitor
	Logger zerolog.Logger
}

type stackEntry struct {
	name  string
	frame Frame
}

// Stack owns the chain of open frames. Entry zero is the document frame,
// which has no element of its own and accepts exactly one root element.
// Events are always routed to the last entry.
type Stack struct {
	ctx      *Context
	frames   []stackEntry
	maxDepth int
	roots    int
}

// DocumentName is the name of the synthetic frame beneath the root element
const DocumentName = "(root)"

// NewStack installs the document frame
func NewStack(ctx *Context, document Frame) *Stack {

	if ctx == nil {
		ctx = &Context{}
	}

	stk := &Stack{ctx: ctx, frames: make([]stackEntry, 1, 8)}
	stk.frames[0] = stackEntry{name: DocumentName, frame: document}

	return stk
}

// Context returns the shared emission context
func (s *Stack) Context() *Context {
	return s.ctx
}

// Top returns the innermost open frame
func (s *Stack) Top() Frame {
	return s.frames[len(s.frames)-1].frame
}

// Depth is the number of open elements
func (s *Stack) Depth() int {
	return len(s.frames) - 1
}

// MaxDepth is the deepest nesting seen so far
func (s *Stack) MaxDepth() int {
	return s.maxDepth
}

// Path lists the names of the open elements, outermost first
func (s *Stack) Path() []string {

	path := make([]string, 0, len(s.frames)-1)
	for _, ent := range s.frames[1:] {
		path = append(path, ent.name)
	}

	return path
}

// build instantiates the frame selected by a factory
func (s *Stack) build(fct Factory, name string, attrs Attrs) (Frame, error) {

	switch fct.Kind {
	case ValueKind:
		field := fct.Field
		if field == "" {
			field = name
		}
		target, ok := s.Top().(Assembly)
		if !ok {
			// value extraction below a frame without a record has nowhere to go
			return nil, &UnhandledElementError{Element: name, Parent: s.frames[len(s.frames)-1].name, Path: s.Path()}
		}
		return &ValueFrame{name: name, field: field, convert: fct.Convert, target: target.Record(), stk: s}, nil
	case AssemblerKind:
		return fct.Assemble(s, name, attrs)
	case IgnoreKind:
		return ignoreFrame, nil
	case PassKind:
		return &PassFrame{ctx: s.ctx, depth: len(s.frames), path: append(s.Path(), name), attrs: attrs}, nil
	}

	return nil, &UnhandledElementError{Element: name, Parent: s.frames[len(s.frames)-1].name, Path: s.Path()}
}

// Open handles an element start event
func (s *Stack) Open(name string, attrs Attrs) error {

	parent := s.frames[len(s.frames)-1]

	if len(s.frames) == 1 {
		if s.roots > 0 {
			err := &UnhandledElementError{Element: name, Parent: DocumentName, Path: s.Path()}
			s.ctx.Logger.Warn().Err(err).Msg("second root element")
			return err
		}
		s.roots++
	}

	fct, ok := parent.frame.Schema().Lookup(name)
	if !ok {
		err := &UnhandledElementError{Element: name, Parent: parent.name, Path: s.Path()}
		s.ctx.Logger.Warn().Err(err).Msg("strict schema rejected element")
		return err
	}

	frame, err := s.build(fct, name, attrs)
	if err != nil {
		return err
	}

	s.frames = append(s.frames, stackEntry{name: name, frame: frame})
	if depth := len(s.frames) - 1; depth > s.maxDepth {
		s.maxDepth = depth
	}

	s.ctx.Logger.Debug().Str("element", name).Int("depth", len(s.frames)-1).Stringer("kind", fct.Kind).Msg("push")

	return frame.Start()
}

// Close handles an element end event. The name is checked before the frame's
// Stop hook runs, so a mismatched tag never completes a record.
func (s *Stack) Close(name string) error {

	top := s.frames[len(s.frames)-1]

	if len(s.frames) == 1 || top.name != name {
		err := &StructuralMismatchError{Expected: top.name, Found: name, Path: s.Path()}
		s.ctx.Logger.Warn().Err(err).Msg("close tag mismatch")
		return err
	}

	if err := top.frame.Stop(); err != nil {
		return err
	}

	s.frames[len(s.frames)-1] = stackEntry{}
	s.frames = s.frames[:len(s.frames)-1]

	s.ctx.Logger.Debug().Str("element", name).Int("depth", len(s.frames)-1).Msg("pop")

	return nil
}

// Text routes character data to the innermost frame
func (s *Stack) Text(data string) {
	s.frames[len(s.frames)-1].frame.Text(data)
}

// Dispatch routes one token to the appropriate stack event
func (s *Stack) Dispatch(tkn XMLToken) error {

	switch tkn.Tag {
	case STARTTAG, SELFTAG:
		attrs, err := ParseAttributes(tkn.Attr)
		if err != nil {
			return err
		}
		if err := s.Open(tkn.Name, attrs); err != nil {
			return err
		}
		if tkn.Tag == SELFTAG {
			return s.Close(tkn.Name)
		}
	case STOPTAG:
		return s.Close(tkn.Name)
	case CONTENTTAG, CDATATAG:
		if len(s.frames) == 1 && strings.Trim(tkn.Name, " \t\r\n") != "" {
			return &SyntaxError{Offset: tkn.Offset, Msg: "character data outside the root element"}
		}
		s.Text(tkn.Name)
	}

	return nil
}
