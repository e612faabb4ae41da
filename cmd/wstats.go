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
// File Name:  wstats.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package main

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/steinarvk/wstats/dumpscan"
	"os"
	"strconv"
	"strings"
	"time"
)

// e.g., wstats -contributors 3 svwiki-20140727-stub-meta-history.xml.gz

const wstatsHelp = `
wstats reads a MediaWiki stub history dump (.xml, .xml.gz, or .xml.bz2)
and prints one line per revision: title, revision id, timestamp, author,
and comment, separated by tabs.

Reports

  -count              Print totals instead of revision lines
  -contributors N     Print the N most frequent registered contributors
  -terms N            Print the N most frequent stemmed comment words
  -db FILE            Store pages and revisions in an SQLite database

Structure

  -tree               Print the element tree, indented by depth
  -paths              Print the dotted path of every element

Tuning and debugging

  -block N            Bytes read per block
  -stats              Print host and tuning parameters
  -timer              Print processing rate and duration
  -debug              Trace frame activity on stderr
  -help               Print this message
`

// UTILITIES

var errorColor = color.New(color.FgRed, color.Bold)

// fail prints an error message and exits
func fail(format string, args ...any) {

	errorColor.Fprintf(os.Stderr, "\nERROR: ")
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, "\n")
	os.Exit(1)
}

// getNumericArg returns an integer argument, reporting an error if no remaining arguments
func getNumericArg(args []string, name string, zer, min, max int) int {

	if len(args) < 2 {
		fail("%s is missing", name)
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		fail("%s (%s) is not an integer", name, args[1])
	}

	// special case for argument value of 0
	if value < 1 {
		return zer
	}
	// limit value to between specified minimum and maximum
	if value < min && min > 0 {
		return min
	}
	if value > max && max > 0 {
		return max
	}
	return value
}

// getStringArg returns a string argument, reporting an error if no remaining arguments
func getStringArg(args []string, name string) string {

	if len(args) < 2 {
		fail("%s is missing", name)
	}
	return args[1]
}

// flatten keeps each revision on one output line
func flatten(str string) string {

	if strings.ContainsAny(str, "\t\n\r") {
		str = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(str)
	}

	return str
}

// MAIN FUNCTION

func main() {

	// skip past executable name
	args := os.Args[1:]

	if len(args) < 1 {
		fail("No command-line arguments supplied to wstats")
	}

	opts := dumpscan.Options{}

	// report selection
	doCount := false
	doTree := false
	doPaths := false
	numContributors := 0
	numTerms := 0
	dbPath := ""

	// debugging
	stts := false
	timr := false
	dbug := false

	inSwitch := true

	// get report, tuning, and debugging flags in any order
	for len(args) > 0 {

		inSwitch = true

		switch args[0] {
		case "-count":
			doCount = true
		case "-tree":
			doTree = true
		case "-paths", "-path":
			doPaths = true
		case "-contributors", "-contributor":
			numContributors = getNumericArg(args, "Number of contributors", 10, 1, 0)
			args = args[1:]
		case "-terms", "-term":
			numTerms = getNumericArg(args, "Number of terms", 10, 1, 0)
			args = args[1:]
		case "-db", "-sqlite":
			dbPath = getStringArg(args, "Database file name")
			args = args[1:]

		// performance tuning flags
		case "-block":
			opts.BlockSize = getNumericArg(args, "Block size", dumpscan.DefaultBlockSize, 16, 1<<24)
			args = args[1:]

		// debugging flags
		case "-debug":
			dbug = true
		case "-stats", "-stat":
			stts = true
		case "-timer":
			timr = true

		case "-help", "--help", "-h":
			fmt.Printf("wstats %s\n%s\n", dumpscan.WStatsVersion, wstatsHelp)
			return

		default:
			// if not any of the controls, set flag to break out of for loop
			inSwitch = false
		}

		if !inSwitch {
			break
		}

		// skip past argument
		args = args[1:]
	}

	if len(args) < 1 {
		fail("Input file name is missing")
	}
	if len(args) > 1 {
		fail("Unrecognized argument '%s'", args[1])
	}
	if strings.HasPrefix(args[0], "-") {
		fail("Unrecognized option '%s'", args[0])
	}

	fileName := args[0]

	if dbug {
		opts.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).With().Timestamp().Str("file", fileName).Logger()
	}

	if stts {
		dumpscan.PrintStats(os.Stderr, opts)
	}

	// ELEMENT STRUCTURE

	if doTree || doPaths {

		dump, err := dumpscan.OpenDump(fileName)
		if err != nil {
			fail("%s", err.Error())
		}
		defer dump.Close()

		err = dumpscan.WalkElements(dump, opts, func(depth int, path []string, attrs dumpscan.Attrs) {
			if doTree {
				fmt.Printf("%s%s\n", strings.Repeat(" ", depth-1), path[len(path)-1])
			} else {
				fmt.Printf("%s\n", strings.Join(path, "."))
			}
		})
		if err != nil {
			dump.Close()
			fail("%s", err.Error())
		}

		return
	}

	// REVISION RECORDS

	var store *dumpscan.Store
	if dbPath != "" {
		var err error
		store, err = dumpscan.OpenStore(dbPath)
		if err != nil {
			fail("%s", err.Error())
		}
	}

	rdr, err := dumpscan.OpenRevisions(fileName, opts)
	if err != nil {
		fail("%s", err.Error())
	}

	contributors := dumpscan.NewTally()
	terms := dumpscan.NewTally()
	var summ dumpscan.Summary

	printLines := !doCount && numContributors == 0 && numTerms == 0 && dbPath == ""

	titleColor := color.New(color.FgBlue)

	for rdr.Next() {
		rev := rdr.Revision()

		summ.Add(rev)

		if numContributors > 0 {
			contributors.AddContributor(rev)
		}
		if numTerms > 0 {
			terms.AddCommentTerms(rev)
		}
		if store != nil {
			if err := store.Add(rev); err != nil {
				rdr.Close()
				store.Close()
				fail("%s", err.Error())
			}
		}

		if printLines {
			fmt.Printf("%s\t%d\t%s\t%s\t%s\n", titleColor.Sprint(flatten(rev.Page.Title)), rev.ID,
				rev.Timestamp.Format(time.RFC3339), flatten(rev.Contributor.Author()), flatten(rev.Comment))
		}
	}

	offset := rdr.Offset()
	depth := rdr.MaxDepth()
	err = rdr.Err()
	rdr.Close()

	if store != nil {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	if err != nil {
		fail("%s", err.Error())
	}

	if numContributors > 0 {
		for _, itm := range contributors.MostCommon(numContributors) {
			fmt.Printf("%s\t%d\n", itm.Key, itm.Count)
		}
	}
	if numContributors > 0 && numTerms > 0 {
		fmt.Printf("\n")
	}
	if numTerms > 0 {
		for _, itm := range terms.MostCommon(numTerms) {
			fmt.Printf("%s\t%d\n", itm.Key, itm.Count)
		}
	}

	if doCount || dbPath != "" {
		fmt.Printf("%s\n", summ.String())
	}

	if timr {
		dumpscan.PrintDuration(os.Stderr, summ.Revisions, offset)
	}

	if stts {
		dumpscan.PrintMemory(os.Stderr, depth)
	}
}
