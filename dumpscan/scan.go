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
// File Name:  scan.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"io"
)

// PULL-BASED REVISION SEQUENCE

// Scanner produces revisions in the order their closing tags appear. Each call
// to Next feeds input one block at a time until at least one revision is
// queued or the input is exhausted, so memory use does not depend on the size
// of the dump. A Scanner makes a single forward pass and cannot be rewound.
type Scanner struct {
	rdr   *blockReader
	tknz  tokenizer
	stack *Stack
	ctx   *Context

	queue []*Revision
	head  int
	curr  *Revision

	err  error
	done bool
}

// NewScanner reads a decoded MediaWiki stub history stream
func NewScanner(in io.Reader, opts Options) *Scanner {

	opts = opts.withDefaults()

	scnr := &Scanner{rdr: newBlockReader(in, opts.BlockSize)}

	scnr.ctx = &Context{
		Emit: func(rev *Revision) {
			scnr.queue = append(scnr.queue, rev)
		},
		Logger: opts.Logger,
	}
	scnr.stack = NewStack(scnr.ctx, NewDocumentFrame(DocumentSchema))

	return scnr
}

// feed reads and dispatches one block, and records the terminal condition
func (s *Scanner) feed() {

	blk, err := s.rdr.nextBlock()

	if err == io.EOF {
		s.done = true
		if err := s.tknz.feed("", true, s.stack.Dispatch); err != nil {
			s.err = err
			return
		}
		if s.stack.Depth() > 0 {
			s.err = &TruncatedError{Path: s.stack.Path()}
		}
		return
	}

	if err != nil {
		s.done = true
		s.err = err
		return
	}

	if err := s.tknz.feed(blk, false, s.stack.Dispatch); err != nil {
		s.done = true
		s.err = err
	}
}

// Next advances to the next revision. Revisions that completed before an error
// are still delivered; Err reports the error once they are exhausted.
func (s *Scanner) Next() bool {

	s.curr = nil

	for s.head >= len(s.queue) {
		if s.done {
			if s.err != nil {
				s.ctx.Logger.Warn().Err(s.err).Msg("scan stopped")
			}
			return false
		}
		// reuse the queue once it has been drained
		s.queue = s.queue[:0]
		s.head = 0
		s.feed()
	}

	s.curr = s.queue[s.head]
	s.queue[s.head] = nil
	s.head++

	return true
}

// Revision returns the record produced by the last successful call to Next
func (s *Scanner) Revision() *Revision {
	return s.curr
}

// Err returns the first error that stopped the scan, if any
func (s *Scanner) Err() error {
	return s.err
}

// Pending is the number of revisions queued but not yet returned
func (s *Scanner) Pending() int {
	return len(s.queue) - s.head
}

// Depth is the current element nesting
func (s *Scanner) Depth() int {
	return s.stack.Depth()
}

// MaxDepth is the deepest element nesting seen so far
func (s *Scanner) MaxDepth() int {
	return s.stack.MaxDepth()
}

// Offset is the number of bytes read from the decoded stream so far
func (s *Scanner) Offset() int64 {
	return s.rdr.position
}

// ELEMENT WALKER

// WalkElements reports every element of a document of any vocabulary to the
// visitor, without building records
func WalkElements(in io.Reader, opts Options, visit Visitor) error {

	opts = opts.withDefaults()

	rdr := newBlockReader(in, opts.BlockSize)
	ctx := &Context{Visit: visit, Logger: opts.Logger}
	stk := NewStack(ctx, NewDocumentFrame(passSchema))

	var tknz tokenizer

	for {
		blk, err := rdr.nextBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := tknz.feed(blk, false, stk.Dispatch); err != nil {
			return err
		}
	}

	if err := tknz.feed("", true, stk.Dispatch); err != nil {
		return err
	}
	if stk.Depth() > 0 {
		return &TruncatedError{Path: stk.Path()}
	}

	return nil
}
