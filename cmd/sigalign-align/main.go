// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/profile"

	"github.com/shenwei356/sigalign"
	"github.com/shenwei356/sigalign/internal/memindex"
)

var version = "0.1.0"

func main() {
	app := filepath.Base(os.Args[0])
	usage := fmt.Sprintf(`
sigalign: gap-affine anchor-and-extend sequence alignment

 Author: Wei Shen <shenwei356@gmail.com>
Version: v%s

Input file format:
  two lines per pair, query prefixed with '>', reference prefixed with '<'.
  Example:
  >ATTGGAAAATAGGATTGGGGTTTGTTTATATTTGGGTTGAGGGATGTCCCACCTTCGTCGTCCTTACGTTTCCGGAAGGGAGTGGTTAGCTCGAAGCCCA
  <GATTGGAAAATAGGATGGGGTTTGTTTATATTTGGGTTGAGGGATGTCCCACCTTGTCGTCCTTACGTTTCCGGAAGGGAGTGGTTGCTCGAAGCCCA

Usage:
  1. Align two sequences from the positional arguments.

        %s [options] <query seq> <reference seq>

  2. Align sequence pairs from the input file.

        %s [options] -i input.txt

Options/Flags:
`, version, app, app)

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	help := flag.Bool("h", false, "print help message")
	infile := flag.String("i", "", "input file")

	mismatch := flag.Uint("x", uint(sigalign.DefaultPenalties.Mismatch), "mismatch penalty")
	gapOpen := flag.Uint("o", uint(sigalign.DefaultPenalties.GapOpen), "gap-open penalty")
	gapExtend := flag.Uint("e", uint(sigalign.DefaultPenalties.GapExtend), "gap-extend penalty")
	minLen := flag.Uint64("L", 50, "minimum aligned length")
	maxPPL := flag.Float64("P", 0.15, "maximum penalty per length")
	local := flag.Bool("local", false, "use local mode instead of semi-global")
	minOnly := flag.Bool("min-only", false, "report only the minimum-penalty alignment(s)")

	pprofCPU := flag.Bool("p", false, "cpu pprof. go tool pprof -http=:8080 cpu.pprof")
	pprofMem := flag.Bool("m", false, "mem pprof. go tool pprof -http=:8080 mem.pprof")

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	if *pprofCPU {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	} else if *pprofMem {
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	outfh := bufio.NewWriter(os.Stdout)
	defer outfh.Flush()

	penalties := sigalign.Penalties{
		Mismatch:  uint32(*mismatch),
		GapOpen:   uint32(*gapOpen),
		GapExtend: uint32(*gapExtend),
	}
	mode := sigalign.SemiGlobal
	if *local {
		mode = sigalign.Local
	}
	options := sigalign.Options{Mode: mode, ReportOnlyMinimum: *minOnly}

	falign2Seq := func(query, reference string) {
		q, r := []byte(query), []byte(reference)

		k := int(sigalign.RecommendedPatternSize(penalties, *minLen, *maxPPL))
		idx := memindex.New(r, k)

		aligner, err := sigalign.New(r, idx, penalties, *minLen, *maxPPL, options)
		checkError(err)

		results, err := aligner.Align(q)
		checkError(err)

		if len(results) == 0 {
			fmt.Fprintln(outfh, "no alignment found")
			fmt.Fprintln(outfh)
			return
		}

		for _, res := range results {
			qLine, bar, rLine := res.AlignmentText(q, r)
			fmt.Fprintf(outfh, "query   %s\n", qLine)
			fmt.Fprintf(outfh, "        %s\n", bar)
			fmt.Fprintf(outfh, "target  %s\n", rLine)
			fmt.Fprintf(outfh, "cigar   %s\n", res.CIGAR())
			fmt.Fprintf(outfh, "penalty: %d, length: %d, matches: %d (%.2f%%), gaps: %d, gap regions: %d\n",
				res.Penalty, res.AlignLen, res.Matches, float64(res.Matches)/float64(res.AlignLen)*100,
				res.Gaps, res.GapRegions)
		}
		fmt.Fprintln(outfh)
	}

	var q, r string

	if *infile == "" {
		if flag.NArg() != 2 {
			checkError(fmt.Errorf("if flag -i not given, please give me two sequences"))
		}
		q = flag.Arg(0)
		r = flag.Arg(1)

		falign2Seq(q, r)
		return
	}

	fh, err := os.Open(*infile)
	if err != nil {
		checkError(fmt.Errorf("failed to read file: %s", *infile))
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	var ok bool
	for scanner.Scan() {
		q = scanner.Text()
		ok = scanner.Scan()
		if !ok {
			break
		}
		r = scanner.Text()

		falign2Seq(q[1:], r[1:])
	}
	if err := scanner.Err(); err != nil {
		checkError(fmt.Errorf("something wrong in reading file: %s", *infile))
	}
}

func checkError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
