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
// File Name:  report_test.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"testing"
)

func TestMostCommonTies(t *testing.T) {

	tally := NewTally()
	for _, key := range []string{"b", "a", "c", "a", "b", "c", "d"} {
		tally.Add(key)
	}

	top := tally.MostCommon(3)
	expected := []Count{{"a", 2}, {"b", 2}, {"c", 2}}
	if len(top) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, top)
	}
	for i := range expected {
		if top[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, top)
		}
	}

	if all := tally.MostCommon(0); len(all) != 4 || all[3] != (Count{"d", 1}) {
		t.Fatalf("unexpected full listing %v", all)
	}
	if more := tally.MostCommon(10); len(more) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(more))
	}
	if tally.Total() != 7 || tally.Len() != 4 || tally.Get("a") != 2 || tally.Get("z") != 0 {
		t.Fatalf("unexpected totals %d %d", tally.Total(), tally.Len())
	}
}

func TestContributorTally(t *testing.T) {

	tally := NewTally()
	tally.AddContributor(&Revision{Contributor: Contributor{Username: "E70", ID: 6006}})
	tally.AddContributor(&Revision{Contributor: Contributor{IP: "192.0.2.1"}})
	tally.AddContributor(&Revision{Contributor: Contributor{Username: "E70", ID: 6006}})

	if tally.Len() != 1 || tally.Get("E70") != 2 {
		t.Fatalf("expected only registered users, got %v", tally.MostCommon(0))
	}
}

func TestCommentTerms(t *testing.T) {

	tally := NewTally()
	tally.AddCommentTerms(&Revision{Comment: "Reverted edits by Foo; [[reverting]]"})

	if tally.Get("revert") != 2 || tally.Get("edit") != 1 || tally.Get("foo") != 1 {
		t.Fatalf("unexpected terms %v", tally.MostCommon(0))
	}
	if tally.Get("by") != 0 || tally.Total() != 4 {
		t.Fatalf("short words counted: %v", tally.MostCommon(0))
	}
}

func TestSummary(t *testing.T) {

	var sum Summary
	for i := 0; i < 1234; i++ {
		sum.Add(&Revision{ID: i, Page: Page{ID: 7}, Text: TextReference{Bytes: 1000}})
	}
	sum.Add(&Revision{ID: 9999, Page: Page{ID: 8}, Text: TextReference{Bytes: 567}})

	expected := "Processed 1,235 revisions across 2 pages, 1,234,567 text bytes"
	if got := sum.String(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}

	var one Summary
	one.Add(&Revision{Page: Page{ID: 1}, Text: TextReference{Bytes: 1}})
	if got := one.String(); got != "Processed 1 revision across 1 page, 1 text byte" {
		t.Fatalf("unexpected singular summary %q", got)
	}
}

func TestSampleSummary(t *testing.T) {

	var sum Summary
	for _, rev := range collect(t, writeSample(t), Options{}) {
		sum.Add(rev)
	}

	if sum.Revisions != sampleRevisions || sum.Pages != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}
