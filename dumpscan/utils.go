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
// File Name:  utils.go
//
// Author:  Jonathan Kans
//
// ==========================================================================

package dumpscan

import (
	"fmt"
	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"io"
	"runtime"
	"time"
)

// WStatsVersion is the current release number
const WStatsVersion = "1.2"

// PERFORMANCE PARAMETERS AND PROCESSING OPTIONS

// 65536 appears to be the maximum number of characters presented to io.Reader
// when input is piped from stdin. Increasing the buffer size when input is from
// a file does not improve program performance.
const DefaultBlockSize = 65536

// Options are passed explicitly to each scanner. Nothing in the package reads
// mutable global settings after a scan has started.
type Options struct {
	// BlockSize is the number of bytes requested from the reader per block.
	BlockSize int
	// Logger receives frame and emission tracing at debug level. The zero
	// value discards everything.
	Logger zerolog.Logger
}

// withDefaults fills in unset tuning values
func (o Options) withDefaults() Options {

	if o.BlockSize < 1 {
		o.BlockSize = DefaultBlockSize
	}

	return o
}

// parser character type lookup tables
var (
	inBlank   [256]bool
	inFirst   [256]bool
	inElement [256]bool
)

// program execution timer
var (
	startTime time.Time
)

// PrintDuration reports elapsed time and scan throughput in revisions and in
// megabytes of decoded XML
func PrintDuration(w io.Writer, revisions int, byteCount int64) {

	seconds := time.Since(startTime).Seconds()
	megabytes := float64(byteCount) / (1024 * 1024)

	// used for adding commas every 3 digits
	p := message.NewPrinter(language.English)

	prec := 3
	if seconds >= 100 {
		prec = 1
	} else if seconds >= 10 {
		prec = 2
	}

	elapsed := fmt.Sprintf("%.*f", prec, seconds)

	if revisions < 1 {
		p.Fprintf(w, "\nScanned no revisions from %.1f MB of XML in %s seconds\n\n", megabytes, elapsed)
		return
	}

	p.Fprintf(w, "\nScanned %d %s from %.1f MB of XML in %s seconds",
		revisions, noun("revision", revisions), megabytes, elapsed)

	if seconds >= 0.001 {
		p.Fprintf(w, " (%d revisions/second, %.1f MB/second)", int(float64(revisions)/seconds), megabytes/seconds)
	}

	p.Fprintf(w, "\n\n")
}

// PrintMemory reports heap use beside the deepest element nesting reached,
// which bounds the number of live frames
func PrintMemory(w io.Writer, maxDepth int) {

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mib := func(b uint64) uint64 {
		return b / (1024 * 1024)
	}

	fmt.Fprintf(w, "Heap %d MiB, system %d MiB, %d collections, nesting %d of %d\n",
		mib(m.HeapAlloc), mib(m.Sys), m.NumGC, maxDepth, MaxSchemaDepth)
}

// PrintStats prints host resources and the block size in effect
func PrintStats(w io.Writer, opts Options) {

	opts = opts.withDefaults()

	nCPU := runtime.NumCPU()

	fmt.Fprintf(w, "Thrd %d\n", nCPU)
	if cpuid.CPU.ThreadsPerCore > 0 {
		fmt.Fprintf(w, "Core %d\n", nCPU/cpuid.CPU.ThreadsPerCore)
	}
	if cpuid.CPU.LogicalCores > 0 {
		fmt.Fprintf(w, "Sock %d\n", nCPU/cpuid.CPU.LogicalCores)
	}
	fmt.Fprintf(w, "Mmry %d\n", memory.TotalMemory()/(1024*1024*1024))

	fmt.Fprintf(w, "Blck %d\n", opts.BlockSize)
	fmt.Fprintf(w, "Gmax %d\n", runtime.GOMAXPROCS(0))

	fmt.Fprintf(w, "\n")
}

// initialize lookup tables that simplify the tokenizer
func init() {

	startTime = time.Now()

	inBlank[' '] = true
	inBlank['\t'] = true
	inBlank['\n'] = true
	inBlank['\r'] = true
	inBlank['\f'] = true

	// first character of element cannot be a digit, dash, or period
	for ch := 'A'; ch <= 'Z'; ch++ {
		inFirst[ch] = true
	}
	for ch := 'a'; ch <= 'z'; ch++ {
		inFirst[ch] = true
	}
	inFirst['_'] = true
	// UTF-8 lead and continuation bytes are accepted in names
	for i := 128; i < 256; i++ {
		inFirst[i] = true
	}

	// remaining characters also includes colon for namespace
	for i := range inFirst {
		inElement[i] = inFirst[i]
	}
	for ch := '0'; ch <= '9'; ch++ {
		inElement[ch] = true
	}
	inElement['-'] = true
	inElement['.'] = true
	inElement[':'] = true
}
