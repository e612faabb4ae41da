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
// File Name:  scan_test.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

func TestSampleRevisionCount(t *testing.T) {

	revs := collect(t, writeSample(t), Options{})

	if len(revs) != sampleRevisions {
		t.Fatalf("expected %d revisions, got %d", sampleRevisions, len(revs))
	}
	if closes := strings.Count(sampleXML(), "</revision>"); closes != len(revs) {
		t.Fatalf("expected one revision per close tag (%d), got %d", closes, len(revs))
	}
}

func TestSamplePageTitles(t *testing.T) {

	seen := make(map[string]bool)
	for _, rev := range collect(t, writeSample(t), Options{}) {
		seen[rev.Page.Title] = true
	}

	if len(seen) != 2 || !seen["Amager"] || !seen["Abba (olika betydelser)"] {
		t.Fatalf("unexpected page titles %v", seen)
	}
}

func TestSampleFrequentContributors(t *testing.T) {

	tally := NewTally()
	for _, rev := range collect(t, writeSample(t), Options{}) {
		tally.AddContributor(rev)
	}

	expected := map[Count]bool{
		{Key: "Mainfoot", Count: 8}:  true,
		{Key: "VolkovBot", Count: 7}: true,
		{Key: "E70", Count: 7}:       true,
	}

	top := tally.MostCommon(3)
	if len(top) != 3 {
		t.Fatalf("expected 3 contributors, got %v", top)
	}
	for _, itm := range top {
		if !expected[itm] {
			t.Errorf("unexpected contributor count %v", itm)
		}
	}
}

func TestSampleRevisionAttributes(t *testing.T) {

	rdr, err := OpenRevisions(writeSample(t), Options{})
	if err != nil {
		t.Fatalf("OpenRevisions: %v", err)
	}
	defer rdr.Close()

	if !rdr.Next() {
		t.Fatalf("no revisions: %v", rdr.Err())
	}
	rev := rdr.Revision()

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"page title", rev.Page.Title, "Amager"},
		{"page ns", rev.Page.NS, 0},
		{"page id", rev.Page.ID, 1},
		{"revision id", rev.ID, 1},
		{"year", rev.Timestamp.Year(), 2001},
		{"username", rev.Contributor.Username, "LinusTolke"},
		{"contributor id", rev.Contributor.ID, 0},
		{"comment", rev.Comment, "*"},
		{"text id", rev.Text.ID, 1},
		{"text bytes", rev.Text.Bytes, 137},
		{"sha1", rev.SHA1, "bgr2ap3ri2abor362xau00k4nasfqtj"},
		{"model", rev.Model, "wikitext"},
		{"format", rev.Format, "text/x-wiki"},
	}

	for _, chk := range checks {
		if chk.got != chk.want {
			t.Errorf("%s: expected %v, got %v", chk.name, chk.want, chk.got)
		}
	}
}

func TestSampleDocumentOrder(t *testing.T) {

	revs := collect(t, writeSample(t), Options{})

	for i, rev := range revs {
		if rev.ID != i+1 {
			t.Fatalf("revision %d emitted at position %d", rev.ID, i)
		}
	}

	if revs[samplePageSplit].ParentID != 0 || revs[samplePageSplit+1].ParentID != samplePageSplit+1 {
		t.Fatalf("unexpected parent ids %d and %d", revs[samplePageSplit].ParentID, revs[samplePageSplit+1].ParentID)
	}
}

func TestSampleContents(t *testing.T) {

	revs := collect(t, writeSample(t), Options{})

	if got := revs[1].Comment; got != "robot Lägger till: [[en:Amager]] & [[da:Amager]]" {
		t.Errorf("entity not decoded: %q", got)
	}
	if got := revs[3].Comment; got != "/* Geografi */ <ref> tillagd" {
		t.Errorf("markup entities not decoded: %q", got)
	}
	if !revs[4].Minor || revs[5].Minor {
		t.Errorf("minor flags wrong: %v %v", revs[4].Minor, revs[5].Minor)
	}

	anonymous := 0
	for _, rev := range revs {
		if rev.Contributor.IP != "" {
			anonymous++
			if rev.Contributor.Username != "" || rev.Contributor.Author() != rev.Contributor.IP {
				t.Errorf("anonymous contributor mixed with account: %+v", rev.Contributor)
			}
		}
	}
	if anonymous != 37 {
		t.Errorf("expected 37 anonymous revisions, got %d", anonymous)
	}
}

func TestSampleBlockSizes(t *testing.T) {

	text := sampleXML()
	reference := collect(t, writeSample(t), Options{})

	for _, size := range []int{1, 2, 7, 61, 512, 4096} {
		t.Run(fmt.Sprintf("block%d", size), func(t *testing.T) {

			scnr := NewScanner(strings.NewReader(text), Options{BlockSize: size})

			num := 0
			for scnr.Next() {
				rev := scnr.Revision()
				ref := reference[num]
				if rev.ID != ref.ID || rev.Comment != ref.Comment || rev.Page != ref.Page ||
					rev.Contributor != ref.Contributor || !rev.Timestamp.Equal(ref.Timestamp) || rev.Text != ref.Text {
					t.Fatalf("revision %d differs: %+v vs %+v", num, rev, ref)
				}
				num++
			}
			if err := scnr.Err(); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if num != len(reference) {
				t.Fatalf("expected %d revisions, got %d", len(reference), num)
			}
		})
	}
}

func TestPageSnapshot(t *testing.T) {

	revs := collect(t, writeSample(t), Options{})

	first := revs[0]
	first.Page.Title = "changed"

	if revs[1].Page.Title != "Amager" {
		t.Fatalf("revisions share page storage")
	}
}

// TRUNCATED AND MALFORMED INPUT

const twoRevisions = `<mediawiki><page><title>T</title><ns>0</ns><id>9</id>
<revision><id>1</id><timestamp>2003-12-20T12:04:34Z</timestamp><contributor><ip>10.0.0.1</ip></contributor><text id="1" bytes="2" /></revision>
<revision><id>2</id><timestamp>2003-12-21T12:04:34Z</timestamp><contributor><ip>10.0.0.2</ip></contributor><text id="2" bytes="3" /></revision>
</page></mediawiki>`

func TestTruncatedInput(t *testing.T) {

	cut := strings.Index(twoRevisions, "<text id=\"2\"")
	scnr := NewScanner(strings.NewReader(twoRevisions[:cut]), Options{})

	var ids []int
	for scnr.Next() {
		ids = append(ids, scnr.Revision().ID)
	}

	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only the complete revision, got %v", ids)
	}

	var trunc *TruncatedError
	if !errors.As(scnr.Err(), &trunc) || !errors.Is(scnr.Err(), ErrTruncated) {
		t.Fatalf("expected truncated error, got %v", scnr.Err())
	}
	if strings.Join(trunc.Path, "/") != "mediawiki/page/revision" {
		t.Fatalf("unexpected open path %v", trunc.Path)
	}
}

func TestTruncatedMarkup(t *testing.T) {

	scnr := NewScanner(strings.NewReader(`<mediawiki><page><title>T</ti`), Options{})
	for scnr.Next() {
		t.Fatalf("unexpected revision")
	}
	if !errors.Is(scnr.Err(), ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", scnr.Err())
	}
}

func TestErrorAfterCompleteRevision(t *testing.T) {

	bad := strings.Replace(twoRevisions, "<id>2</id>", "<id>two</id>", 1)
	scnr := NewScanner(strings.NewReader(bad), Options{})

	var ids []int
	for scnr.Next() {
		ids = append(ids, scnr.Revision().ID)
	}

	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected revision 1 before the error, got %v", ids)
	}

	var conv *ValueConversionError
	if !errors.As(scnr.Err(), &conv) {
		t.Fatalf("expected conversion error, got %v", scnr.Err())
	}
	if conv.Element != "id" || conv.Text != "two" {
		t.Fatalf("unexpected conversion error %+v", conv)
	}
	if strings.Join(conv.Path, "/") != "mediawiki/page/revision/id" {
		t.Fatalf("unexpected path %v", conv.Path)
	}

	// the scanner stays stopped
	if scnr.Next() {
		t.Fatalf("Next succeeded after error")
	}
}

func TestSchemaDrift(t *testing.T) {

	drift := strings.Replace(twoRevisions, "<text id=\"2\"", "<origin>5</origin><text id=\"2\"", 1)
	scnr := NewScanner(strings.NewReader(drift), Options{})
	for scnr.Next() {
	}

	var unh *UnhandledElementError
	if !errors.As(scnr.Err(), &unh) {
		t.Fatalf("expected unhandled element, got %v", scnr.Err())
	}
	if unh.Element != "origin" || unh.Parent != "revision" {
		t.Fatalf("unexpected error %+v", unh)
	}
}

func TestStrayCloseTag(t *testing.T) {

	stray := strings.Replace(twoRevisions, "<ip>10.0.0.2</ip>", "<ip>10.0.0.2</ip></username>", 1)
	scnr := NewScanner(strings.NewReader(stray), Options{})

	num := 0
	for scnr.Next() {
		num++
	}

	if num != 1 {
		t.Fatalf("expected one revision, got %d", num)
	}
	if !errors.Is(scnr.Err(), ErrStructuralMismatch) {
		t.Fatalf("expected structural mismatch, got %v", scnr.Err())
	}
}

func TestSecondDocumentRejected(t *testing.T) {

	tests := []string{
		twoRevisions + twoRevisions,
		twoRevisions + "\ngarbage\n",
	}

	for _, text := range tests {
		scnr := NewScanner(strings.NewReader(text), Options{})

		num := 0
		for scnr.Next() {
			num++
		}

		if num != 2 {
			t.Errorf("expected the first document's 2 revisions, got %d", num)
		}
		if scnr.Err() == nil {
			t.Errorf("content after the root element was accepted")
		}
	}
}

func TestCommentLineBreaks(t *testing.T) {

	text := strings.Replace(twoRevisions, "<text id=\"1\"", "<comment>a&#x80;b&#13;&#10;c&#x9;\r\nd\re</comment><text id=\"1\"", 1)

	for _, size := range []int{1, 2, 3, DefaultBlockSize} {
		scnr := NewScanner(strings.NewReader(text), Options{BlockSize: size})
		if !scnr.Next() {
			t.Fatalf("no revision: %v", scnr.Err())
		}
		if got := scnr.Revision().Comment; got != "a\u0080b\r\nc\t\nd\ne" {
			t.Errorf("block %d: unexpected comment %q", size, got)
		}
	}
}

// MEMORY BOUND

// syntheticDump generates a dump of any size on demand, without holding more
// than one revision of text at a time
type syntheticDump struct {
	pages   int
	revs    int
	page    int
	rev     int
	pending []byte
	state   int
}

func (d *syntheticDump) Read(p []byte) (int, error) {

	for len(d.pending) == 0 {
		switch d.state {
		case 0:
			d.pending = []byte("<mediawiki>\n<siteinfo><sitename>x</sitename></siteinfo>\n")
			d.state = 1
		case 1:
			if d.page == d.pages {
				d.pending = []byte("</mediawiki>\n")
				d.state = 3
				break
			}
			d.page++
			d.rev = 0
			d.pending = []byte(fmt.Sprintf("<page><title>Page %d</title><ns>0</ns><id>%d</id>\n", d.page, d.page))
			d.state = 2
		case 2:
			if d.rev == d.revs {
				d.pending = []byte("</page>\n")
				d.state = 1
				break
			}
			d.rev++
			d.pending = []byte(fmt.Sprintf("<revision><id>%d</id><timestamp>2010-01-02T03:04:05Z</timestamp>"+
				"<contributor><username>u%d</username><id>%d</id></contributor><comment>c</comment>"+
				"<text id=\"%d\" bytes=\"10\" /><sha1>s</sha1></revision>\n", d.rev, d.rev%13, d.rev%13, d.rev))
		case 3:
			return 0, io.EOF
		}
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]

	return n, nil
}

func TestFrameCountBounded(t *testing.T) {

	src := &syntheticDump{pages: 40, revs: 500}
	scnr := NewScanner(src, Options{BlockSize: 1024})

	num := 0
	maxPending := 0
	for scnr.Next() {
		num++
		if scnr.Depth() > MaxSchemaDepth {
			t.Fatalf("depth %d exceeds schema depth", scnr.Depth())
		}
		if p := scnr.Pending(); p > maxPending {
			maxPending = p
		}
	}

	if err := scnr.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if num != 40*500 {
		t.Fatalf("expected %d revisions, got %d", 40*500, num)
	}
	if scnr.MaxDepth() != MaxSchemaDepth {
		t.Fatalf("expected max depth %d, got %d", MaxSchemaDepth, scnr.MaxDepth())
	}
	// a 1024 byte block holds at most a handful of revisions
	if maxPending > 1024/100 {
		t.Fatalf("queue grew to %d revisions", maxPending)
	}
}

func TestScannerPullsLazily(t *testing.T) {

	src := &syntheticDump{pages: 1000, revs: 100}
	scnr := NewScanner(src, Options{BlockSize: 4096})

	for i := 0; i < 10; i++ {
		if !scnr.Next() {
			t.Fatalf("scan stopped early: %v", scnr.Err())
		}
	}

	// abandoning the sequence leaves nearly all input unread
	if scnr.Offset() > 3*4096 {
		t.Fatalf("read %d bytes for ten revisions", scnr.Offset())
	}
}

// ELEMENT WALKER

func TestWalkElements(t *testing.T) {

	var lines []string
	err := WalkElements(strings.NewReader(`<?xml version="1.0"?><a><b x="1"/><c><d>text</d></c></a>`), Options{BlockSize: 3},
		func(depth int, path []string, attrs Attrs) {
			lines = append(lines, fmt.Sprintf("%d %s %d", depth, strings.Join(path, "."), len(attrs)))
		})
	if err != nil {
		t.Fatalf("WalkElements: %v", err)
	}

	expected := []string{"1 a 0", "2 a.b 1", "2 a.c 0", "3 a.c.d 0"}
	if strings.Join(lines, "|") != strings.Join(expected, "|") {
		t.Fatalf("expected %v, got %v", expected, lines)
	}
}

func TestWalkElementsMismatch(t *testing.T) {

	err := WalkElements(bytes.NewReader([]byte(`<a><b></a>`)), Options{}, nil)

	var mis *StructuralMismatchError
	if !errors.As(err, &mis) || mis.Expected != "b" || mis.Found != "a" {
		t.Fatalf("expected mismatch of b and a, got %v", err)
	}
}

func TestTimestampField(t *testing.T) {

	scnr := NewScanner(strings.NewReader(strings.Replace(twoRevisions, "2003-12-20T12:04:34Z", "2003-12-20T12:04:34+01:00", 1)), Options{})
	if !scnr.Next() {
		t.Fatalf("no revision: %v", scnr.Err())
	}

	want := time.Date(2003, time.December, 20, 11, 4, 34, 0, time.UTC)
	if got := scnr.Revision().Timestamp; !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
