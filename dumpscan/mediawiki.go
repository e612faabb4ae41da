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
// File Name:  mediawiki.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"fmt"
)

// RECORD ASSEMBLERS FOR THE MEDIAWIKI STUB HISTORY SCHEMA

// <mediawiki>
//   <siteinfo> ... </siteinfo>
//   <page>
//     <title>Amager</title>
//     <ns>0</ns>
//     <id>1</id>
//     <revision>
//       <id>1</id>
//       <timestamp>2001-...Z</timestamp>
//       <contributor> <username>...</username> <id>0</id> </contributor>
//       <comment>*</comment>
//       <model>wikitext</model>
//       <format>text/x-wiki</format>
//       <text id="1" bytes="137" />
//       <sha1>...</sha1>
//     </revision>
//   </page>
// </mediawiki>

// MaxSchemaDepth is the deepest element nesting the schema allows
const MaxSchemaDepth = 5

var (
	mediawikiSchema   *Schema
	pageSchema        *Schema
	revisionSchema    *Schema
	contributorSchema *Schema
)

// DocumentSchema accepts a single mediawiki root element
var DocumentSchema *Schema

func init() {

	contributorSchema = &Schema{
		Elements: map[string]Factory{
			"username": Value("", Identity),
			"id":       Value("", Integer),
			"ip":       Value("ip", Identity),
		},
	}

	revisionSchema = &Schema{
		Elements: map[string]Factory{
			"id":          Value("", Integer),
			"parentid":    Value("", Integer),
			"timestamp":   Value("", Timestamp),
			"contributor": Assembler(newContributorFrame),
			"minor":       Assembler(newMinorFrame),
			"comment":     Value("", Identity),
			"model":       Value("", Identity),
			"format":      Value("", Identity),
			"text":        Assembler(newTextFrame),
			"sha1":        Value("", Identity),
		},
	}

	pageSchema = &Schema{
		Elements: map[string]Factory{
			"title":        Value("", Identity),
			"ns":           Value("", Integer),
			"id":           Value("", Integer),
			"redirect":     Assembler(newRedirectFrame),
			"restrictions": Value("", Identity),
			"revision":     Assembler(newRevisionFrame),
		},
	}

	mediawikiSchema = &Schema{
		Elements: map[string]Factory{
			"siteinfo": Ignore(),
			"page":     Assembler(newPageFrame),
		},
	}

	DocumentSchema = &Schema{
		Elements: map[string]Factory{
			"mediawiki": Assembler(newMediawikiFrame),
		},
	}
}

// enclosing returns the innermost frame as the requested assembler type
func enclosing[T Frame](stk *Stack, name string) (T, error) {

	frame, ok := stk.Top().(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("<%s> cannot be assembled below %T", name, stk.Top())
	}

	return frame, nil
}

// attributeValue converts one attribute, reporting failures like element text
func attributeValue(stk *Stack, name string, attrs Attrs, key string, convert Converter, record Target) error {

	str, ok := attrs.Get(key)
	if !ok {
		return nil
	}

	value, err := convert(str)
	if err != nil {
		return &ValueConversionError{Element: name + "@" + key, Field: key, Text: str, Path: append(stk.Path(), name), Err: err}
	}
	if err := record.SetField(key, value); err != nil {
		return &ValueConversionError{Element: name + "@" + key, Field: key, Text: str, Path: append(stk.Path(), name), Err: err}
	}

	return nil
}

// MediawikiFrame holds the export root
type MediawikiFrame struct {
	baseFrame
}

func newMediawikiFrame(stk *Stack, name string, attrs Attrs) (Frame, error) {
	return &MediawikiFrame{}, nil
}

func (*MediawikiFrame) Schema() *Schema {
	return mediawikiSchema
}

// PageFrame accumulates page fields. Its revisions read the page when they
// close, by which time title, ns, and id have been seen.
type PageFrame struct {
	baseFrame
	ctx       *Context
	page      *Page
	revisions int
}

func newPageFrame(stk *Stack, name string, attrs Attrs) (Frame, error) {
	return &PageFrame{ctx: stk.Context(), page: &Page{}}, nil
}

func (*PageFrame) Schema() *Schema {
	return pageSchema
}

func (f *PageFrame) Record() Target {
	return f.page
}

func (f *PageFrame) Stop() error {

	f.ctx.Logger.Debug().Str("title", f.page.Title).Int("revisions", f.revisions).Msg("page complete")

	return nil
}

// RedirectFrame copies the redirect target from its title attribute
type RedirectFrame struct {
	baseFrame
}

func newRedirectFrame(stk *Stack, name string, attrs Attrs) (Frame, error) {

	parent, err := enclosing[*PageFrame](stk, name)
	if err != nil {
		return nil, err
	}
	if err := attributeValue(stk, name, attrs, "title", Identity, redirectField{parent.page}); err != nil {
		return nil, err
	}

	return &RedirectFrame{}, nil
}

// redirectField maps the title attribute onto Page.Redirect
type redirectField struct {
	page *Page
}

func (r redirectField) SetField(field string, value any) error {
	return r.page.SetField("redirect", value)
}

// RevisionFrame builds one revision and emits it on close
type RevisionFrame struct {
	baseFrame
	ctx    *Context
	parent *PageFrame
	rev    *Revision
}

func newRevisionFrame(stk *Stack, name string, attrs Attrs) (Frame, error) {

	parent, err := enclosing[*PageFrame](stk, name)
	if err != nil {
		return nil, err
	}

	return &RevisionFrame{ctx: stk.Context(), parent: parent, rev: &Revision{}}, nil
}

func (*RevisionFrame) Schema() *Schema {
	return revisionSchema
}

func (f *RevisionFrame) Record() Target {
	return f.rev
}

func (f *RevisionFrame) Stop() error {

	// snapshot, so that emitted revisions never share the page being assembled
	f.rev.Page = *f.parent.page
	f.parent.revisions++

	f.ctx.Logger.Debug().Int("revision", f.rev.ID).Str("title", f.rev.Page.Title).Msg("emit")

	if f.ctx.Emit != nil {
		f.ctx.Emit(f.rev)
	}

	return nil
}

// ContributorFrame builds the contributor and hands it to the revision on close
type ContributorFrame struct {
	baseFrame
	rev  *Revision
	user Contributor
}

func newContributorFrame(stk *Stack, name string, attrs Attrs) (Frame, error) {

	parent, err := enclosing[*RevisionFrame](stk, name)
	if err != nil {
		return nil, err
	}

	frame := &ContributorFrame{rev: parent.rev}
	if val, ok := attrs.Get("deleted"); ok && val == "deleted" {
		frame.user.Deleted = true
	}

	return frame, nil
}

func (*ContributorFrame) Schema() *Schema {
	return contributorSchema
}

func (f *ContributorFrame) Record() Target {
	return &f.user
}

func (f *ContributorFrame) Stop() error {

	f.rev.Contributor = f.user

	return nil
}

// TextFrame reads the text reference attributes. Any body is discarded.
type TextFrame struct {
	baseFrame
	rev  *Revision
	text TextReference
}

func newTextFrame(stk *Stack, name string, attrs Attrs) (Frame, error) {

	parent, err := enclosing[*RevisionFrame](stk, name)
	if err != nil {
		return nil, err
	}

	frame := &TextFrame{rev: parent.rev}
	if err := attributeValue(stk, name, attrs, "id", Integer, &frame.text); err != nil {
		return nil, err
	}
	if err := attributeValue(stk, name, attrs, "bytes", Integer, &frame.text); err != nil {
		return nil, err
	}

	return frame, nil
}

func (f *TextFrame) Stop() error {

	f.rev.Text = f.text

	return nil
}

// MinorFrame marks a minor edit. The element carries no content of interest.
type MinorFrame struct {
	IgnoreFrame
	rev *Revision
}

func newMinorFrame(stk *Stack, name string, attrs Attrs) (Frame, error) {

	parent, err := enclosing[*RevisionFrame](stk, name)
	if err != nil {
		return nil, err
	}

	return &MinorFrame{rev: parent.rev}, nil
}

func (f *MinorFrame) Start() error {

	f.rev.Minor = true

	return nil
}
