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
// File Name:  input.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"bufio"
	"compress/bzip2"
	"fmt"
	"github.com/klauspost/pgzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"io"
	"os"
	"strings"
)

// OPEN COMPRESSED DUMP FILES

// Dump is a decompressed, UTF-8 decoded view of a dump file. Close releases
// the decompressor and the file.
type Dump struct {
	file *os.File
	zpr  *pgzip.Reader
	in   io.Reader
}

// NewDump decodes an already decompressed stream. A byte order mark selects
// UTF-8 or UTF-16; without one the input is taken as UTF-8.
func NewDump(in io.Reader) *Dump {

	dcdr := unicode.BOMOverride(unicode.UTF8.NewDecoder())

	return &Dump{in: transform.NewReader(in, dcdr)}
}

// OpenDump opens a dump file, choosing a decompressor by file suffix
func OpenDump(fileName string) (*Dump, error) {

	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("unable to open input file '%s': %w", fileName, err)
	}

	var in io.Reader

	in = f

	var zpr *pgzip.Reader

	// if suffix is ".gz", use decompressor
	if strings.HasSuffix(fileName, ".gz") {
		brd := bufio.NewReader(f)
		// using parallel pgzip for better performance on large files
		zpr, err = pgzip.NewReader(brd)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("unable to create decompressor on '%s': %w", fileName, err)
		}
		in = zpr
	} else if strings.HasSuffix(fileName, ".bz2") {
		in = bzip2.NewReader(bufio.NewReader(f))
	}

	dump := NewDump(in)
	dump.file = f
	dump.zpr = zpr

	return dump, nil
}

func (d *Dump) Read(p []byte) (int, error) {
	return d.in.Read(p)
}

// Close releases resources in reverse order of acquisition. It is safe to
// call more than once.
func (d *Dump) Close() error {

	var first error

	if d.zpr != nil {
		first = d.zpr.Close()
		d.zpr = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil && first == nil {
			first = err
		}
		d.file = nil
	}

	return first
}

// RevisionReader owns both the dump and the scanner reading it
type RevisionReader struct {
	*Scanner
	dump *Dump
}

// OpenRevisions opens a dump file for pull-based reading. The caller must
// Close the reader, whether or not the sequence was read to the end.
func OpenRevisions(fileName string, opts Options) (*RevisionReader, error) {

	dump, err := OpenDump(fileName)
	if err != nil {
		return nil, err
	}

	return &RevisionReader{Scanner: NewScanner(dump, opts), dump: dump}, nil
}

// Close releases the input file
func (r *RevisionReader) Close() error {
	return r.dump.Close()
}

// ParseRevisions sends every revision in a dump file to the callback. A
// callback error stops the scan and is returned unchanged.
func ParseRevisions(fileName string, opts Options, proc func(*Revision) error) error {

	rdr, err := OpenRevisions(fileName, opts)
	if err != nil {
		return err
	}
	defer rdr.Close()

	for rdr.Next() {
		if err := proc(rdr.Revision()); err != nil {
			return err
		}
	}

	return rdr.Err()
}
