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
// File Name:  report.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"github.com/gedex/inflector"
	"github.com/surgebase/porter2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"sort"
	"strings"
	"unicode"
)

// FREQUENCY REPORTS

// Count is one entry of a tally
type Count struct {
	Key   string
	Count int
}

// Tally counts occurrences of strings
type Tally struct {
	counts map[string]int
	total  int
}

// NewTally returns an empty tally
func NewTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

// Add increments the count for a key
func (t *Tally) Add(key string) {

	t.counts[key]++
	t.total++
}

// Get returns the count for a key
func (t *Tally) Get(key string) int {
	return t.counts[key]
}

// Len is the number of distinct keys
func (t *Tally) Len() int {
	return len(t.counts)
}

// Total is the sum of all counts
func (t *Tally) Total() int {
	return t.total
}

// MostCommon returns the n highest counts, largest first, with ties in
// alphabetical order. A non-positive n returns every key.
func (t *Tally) MostCommon(n int) []Count {

	arry := make([]Count, 0, len(t.counts))
	for key, num := range t.counts {
		arry = append(arry, Count{Key: key, Count: num})
	}

	sort.Slice(arry, func(i, j int) bool {
		if arry[i].Count != arry[j].Count {
			return arry[i].Count > arry[j].Count
		}
		return arry[i].Key < arry[j].Key
	})

	if n > 0 && n < len(arry) {
		arry = arry[:n]
	}

	return arry
}

// AddContributor counts registered usernames, skipping anonymous and deleted
// contributors
func (t *Tally) AddContributor(rev *Revision) {

	if rev.Contributor.Username != "" {
		t.Add(rev.Contributor.Username)
	}
}

// AddCommentTerms counts the stemmed words of an edit comment. Section
// markers, wiki link brackets, and punctuation separate words.
func (t *Tally) AddCommentTerms(rev *Revision) {

	words := strings.FieldsFunc(strings.ToLower(rev.Comment), func(ch rune) bool {
		return !unicode.IsLetter(ch) && !unicode.IsDigit(ch)
	})

	for _, itm := range words {
		if len(itm) < 3 {
			continue
		}
		t.Add(porter2.Stem(itm))
	}
}

// SUMMARY

// Summary accumulates overall counts for a scan
type Summary struct {
	Revisions int
	Pages     int
	Bytes     int64
	lastPage  int
	seenPage  bool
}

// Add counts a revision, and its page when the page changes
func (s *Summary) Add(rev *Revision) {

	s.Revisions++
	if !s.seenPage || rev.Page.ID != s.lastPage {
		s.Pages++
		s.lastPage = rev.Page.ID
		s.seenPage = true
	}
	s.Bytes += int64(rev.Text.Bytes)
}

// noun pluralizes a word for counts other than one
func noun(word string, num int) string {

	if num == 1 {
		return word
	}

	return inflector.Pluralize(word)
}

// String reports the totals with digit grouping
func (s *Summary) String() string {

	// used for adding commas every 3 digits
	p := message.NewPrinter(language.English)

	return p.Sprintf("Processed %d %s across %d %s, %d text %s",
		s.Revisions, noun("revision", s.Revisions),
		s.Pages, noun("page", s.Pages),
		s.Bytes, noun("byte", int(s.Bytes)))
}
