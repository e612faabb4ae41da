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
// File Name:  fixture_test.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"fmt"
	"github.com/klauspost/pgzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// SAMPLE STUB HISTORY FIXTURE

// The sample has 160 revisions across the pages Amager (100 revisions) and
// Abba (olika betydelser) (60 revisions). Mainfoot has 8 edits, VolkovBot and
// E70 have 7 each, and nobody else has more than 5.

const (
	sampleRevisions = 160
	samplePageSplit = 100
)

type sampleEditor struct {
	name string
	id   int
	ip   string
}

// sampleEditors lists the contributor of every revision in document order
func sampleEditors() []sampleEditor {

	var pool []sampleEditor

	add := func(ed sampleEditor, num int) {
		for i := 0; i < num; i++ {
			pool = append(pool, ed)
		}
	}

	add(sampleEditor{name: "Mainfoot", id: 1281}, 8)
	add(sampleEditor{name: "VolkovBot", id: 60789}, 7)
	add(sampleEditor{name: "E70", id: 6006}, 7)
	for i := 0; i < 20; i++ {
		add(sampleEditor{name: fmt.Sprintf("Redaktör%02d", i), id: 100 + i}, 5)
	}
	for len(pool) < sampleRevisions-1 {
		add(sampleEditor{ip: fmt.Sprintf("192.0.2.%d", len(pool))}, 1)
	}

	// spread repeated editors through the history; 7 is coprime to 159
	arry := make([]sampleEditor, 0, sampleRevisions)
	arry = append(arry, sampleEditor{name: "LinusTolke", id: 0})
	for i := range pool {
		arry = append(arry, pool[(i*7)%len(pool)])
	}

	return arry
}

// sampleXML renders the fixture document
func sampleXML() string {

	var buffer strings.Builder

	buffer.WriteString(`<?xml version="1.0" encoding="utf-8"?>
<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.9/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" version="0.9" xml:lang="sv">
  <siteinfo>
    <sitename>Wikipedia</sitename>
    <base>http://sv.wikipedia.org/wiki/Portal:Huvudsida</base>
    <generator>MediaWiki 1.24wmf14</generator>
    <case>first-letter</case>
    <namespaces>
      <namespace key="-2" case="first-letter">Media</namespace>
      <namespace key="0" case="first-letter" />
      <namespace key="1" case="first-letter">Diskussion</namespace>
    </namespaces>
  </siteinfo>
`)

	editors := sampleEditors()
	start := time.Date(2001, time.November, 23, 14, 2, 19, 0, time.UTC)

	openPage := func(title string, id int) {
		fmt.Fprintf(&buffer, "  <page>\n    <title>%s</title>\n    <ns>0</ns>\n    <id>%d</id>\n", title, id)
	}

	for i := 0; i < sampleRevisions; i++ {

		revID := i + 1

		switch i {
		case 0:
			openPage("Amager", 1)
		case samplePageSplit:
			buffer.WriteString("  </page>\n")
			openPage("Abba (olika betydelser)", 35)
		}

		buffer.WriteString("    <revision>\n")
		fmt.Fprintf(&buffer, "      <id>%d</id>\n", revID)
		if i != 0 && i != samplePageSplit {
			fmt.Fprintf(&buffer, "      <parentid>%d</parentid>\n", revID-1)
		}
		fmt.Fprintf(&buffer, "      <timestamp>%s</timestamp>\n", start.Add(time.Duration(i)*97*time.Hour).Format(time.RFC3339))

		ed := editors[i]
		if ed.name != "" {
			fmt.Fprintf(&buffer, "      <contributor>\n        <username>%s</username>\n        <id>%d</id>\n      </contributor>\n", ed.name, ed.id)
		} else {
			fmt.Fprintf(&buffer, "      <contributor>\n        <ip>%s</ip>\n      </contributor>\n", ed.ip)
		}

		if i%9 == 4 {
			buffer.WriteString("      <minor/>\n")
		}

		switch {
		case i == 0:
			buffer.WriteString("      <comment>*</comment>\n")
		case i%5 == 1:
			buffer.WriteString("      <comment>robot Lägger till: [[en:Amager]] &amp; [[da:Amager]]</comment>\n")
		case i%5 == 2:
			fmt.Fprintf(&buffer, "      <comment>Återställde redigeringar av %s</comment>\n", ed.Author())
		case i%5 == 3:
			buffer.WriteString("      <comment>/* Geografi */ &lt;ref&gt; tillagd</comment>\n")
		}

		sha1 := "bgr2ap3ri2abor362xau00k4nasfqtj"
		if i > 0 {
			sha1 = fmt.Sprintf("%031d", revID*7919)
		}

		buffer.WriteString("      <model>wikitext</model>\n")
		buffer.WriteString("      <format>text/x-wiki</format>\n")
		fmt.Fprintf(&buffer, "      <text id=\"%d\" bytes=\"%d\" />\n", revID, 137+i*31)
		fmt.Fprintf(&buffer, "      <sha1>%s</sha1>\n", sha1)
		buffer.WriteString("    </revision>\n")
	}

	buffer.WriteString("  </page>\n</mediawiki>\n")

	return buffer.String()
}

// Author mirrors Contributor.Author for the fixture
func (ed sampleEditor) Author() string {

	if ed.name != "" {
		return ed.name
	}

	return ed.ip
}

// writeSample writes the gzip-compressed fixture into a temporary directory
func writeSample(t *testing.T) string {

	t.Helper()

	fpath := filepath.Join(t.TempDir(), "svwiki-20140727-stub-meta-history.sample.xml.gz")

	fl, err := os.Create(fpath)
	if err != nil {
		t.Fatalf("create sample: %v", err)
	}
	zpr := pgzip.NewWriter(fl)
	if _, err := zpr.Write([]byte(sampleXML())); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := zpr.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("close sample: %v", err)
	}

	return fpath
}

// collect reads every revision of a sample file
func collect(t *testing.T, fpath string, opts Options) []*Revision {

	t.Helper()

	var revs []*Revision
	err := ParseRevisions(fpath, opts, func(rev *Revision) error {
		revs = append(revs, rev)
		return nil
	})
	if err != nil {
		t.Fatalf("ParseRevisions: %v", err)
	}

	return revs
}
