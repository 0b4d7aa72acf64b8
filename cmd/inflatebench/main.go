// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command inflatebench compares the performance of DEFLATE implementations
// and reports decoder statistics for individual files. Individual
// implementations are referred to as codecs.
//
// Example usage:
//
//	$ inflatebench bench \
//		--formats fl            \
//		--tests   decRate,ratio \
//		--codecs  std,kp,ds     \
//		--inputs  text,digits   \
//		--levels  1,6,9         \
//		--sizes   1e4,1e5,1e6
//
//	BENCHMARK: fl:decRate
//		benchmark          std MB/s  delta      kp MB/s  delta      ds MB/s  delta
//		text:1:1e4           102.16  1.00x       177.80  1.74x       121.98  1.19x
//		...
//
//	$ inflatebench stats archive.gz
//
// Every flag may also be set with an INFLATEBENCH_* environment variable.
package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	strconv "github.com/dsnet/golib/unitconv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dsnet/inflate/gzip"
	"github.com/dsnet/inflate/inflate"
	"github.com/dsnet/inflate/internal/tool/bench"
)

func main() {
	testing.Init()

	cli, ctx, err := readCLIArgs(os.Args[1:])
	if err != nil {
		fmt.Println("ERROR: ", err)
		os.Exit(1)
	}

	if cli.Debug {
		logrus.Info("debug mode enabled")
		logrus.SetLevel(logrus.DebugLevel)
	}

	switch cmd := ctx.Command(); {
	case strings.HasPrefix(cmd, "stats"):
		err = runStats(&cli.Stats)
	default:
		displayConfig(&cli.Bench)
		err = runBench(&cli.Bench)
	}
	if err != nil {
		logrus.Errorf("inflatebench failed: %s", err)
		os.Exit(1)
	}
}

func displayConfig(b *BenchCmd) {
	logrus.Info("inflatebench settings:")
	logrus.Infof("  version: %s", VERSION)
	logrus.Infof("  formats: %v", b.formats)
	logrus.Infof("  tests: %v", b.tests)
	logrus.Infof("  codecs: %v", b.Codecs)
	logrus.Infof("  inputs: %v", b.Inputs)
	logrus.Infof("  paths: %v", b.Paths)
	logrus.Infof("  levels: %v", b.levels)
	logrus.Infof("  sizes: %v", b.sizes)
	logrus.Info("")
}

func runBench(b *BenchCmd) error {
	ts := time.Now()
	bench.Paths = b.Paths
	for _, f := range b.formats {
		// Get lists of encoders and decoders that exist.
		var encs, decs []string
		for _, c := range b.Codecs {
			if _, ok := bench.Encoders[f][c]; ok {
				encs = append(encs, c)
			}
			if _, ok := bench.Decoders[f][c]; ok {
				decs = append(decs, c)
			}
		}

		for _, t := range b.tests {
			var results [][]bench.Result
			var names, codecs []string
			var title, suffix string

			// Check that we can actually do this bench.
			log := logrus.WithField("benchmark", fmt.Sprintf("%v:%v", f, t))
			if len(encs) == 0 {
				log.Warn("skipped: there are no encoders available")
				continue
			}
			if len(decs) == 0 && t == bench.TestDecodeRate {
				log.Warn("skipped: there are no decoders available")
				continue
			}

			// Progress ticker.
			var cnt, total int
			tick := func() {
				cnt++
				if cnt%len(codecs) == 0 {
					log.Infof("progress %6.2f%% (%d of %d)", 100*float64(cnt)/float64(total), cnt, total)
				}
			}

			// Perform the bench. This may take some time.
			start := time.Now()
			switch t {
			case bench.TestEncodeRate:
				codecs, title, suffix = encs, "MB/s", ""
				total = len(codecs) * len(b.Inputs) * len(b.levels) * len(b.sizes)
				results, names = bench.BenchmarkEncoderSuite(f, encs, b.Inputs, b.levels, b.sizes, tick)
			case bench.TestDecodeRate:
				ref := bench.ReferenceEncoder(f, b.RefEnc...)
				codecs, title, suffix = decs, "MB/s", ""
				total = len(codecs) * len(b.Inputs) * len(b.levels) * len(b.sizes)
				results, names = bench.BenchmarkDecoderSuite(f, decs, b.Inputs, b.levels, b.sizes, ref, tick)
			case bench.TestCompressRatio:
				codecs, title, suffix = encs, "ratio", "x"
				total = len(codecs) * len(b.Inputs) * len(b.levels) * len(b.sizes)
				results, names = bench.BenchmarkRatioSuite(f, encs, b.Inputs, b.levels, b.sizes, tick)
			default:
				return errors.Errorf("unknown test %v", t)
			}
			log.Debugf("suite finished in %v", time.Since(start))

			// Print all of the results.
			fmt.Printf("BENCHMARK: %v:%v\n", f, t)
			printResults(os.Stdout, results, names, codecs, title, suffix)
			fmt.Println()
		}
	}
	logrus.Infof("runtime: %v", time.Since(ts))
	return nil
}

func printResults(w io.Writer, results [][]bench.Result, names, codecs []string, title, suffix string) {
	// Allocate result table.
	cells := make([][]string, 1+len(names))
	for i := range cells {
		cells[i] = make([]string, 1+2*len(codecs))
	}

	// Label the first row.
	cells[0][0] = "benchmark"
	for i, c := range codecs {
		cells[0][1+2*i] = c + " " + title
		cells[0][2+2*i] = "delta"
	}

	// Insert all rows.
	for j, row := range results {
		cells[1+j][0] = names[j]
		for i, r := range row {
			if r.R != 0 && !math.IsNaN(r.R) && !math.IsInf(r.R, 0) {
				cells[1+j][1+2*i] = fmt.Sprintf("%.2f", r.R) + suffix
			}
			if r.D != 0 && !math.IsNaN(r.D) && !math.IsInf(r.D, 0) {
				cells[1+j][2+2*i] = fmt.Sprintf("%.2f", r.D) + "x"
			}
		}
	}

	// Compute the maximum lengths.
	maxLens := make([]int, 1+2*len(codecs))
	for _, row := range cells {
		for i, s := range row {
			if maxLens[i] < len(s) {
				maxLens[i] = len(s)
			}
		}
	}

	// Print padded versions of all cells.
	for _, row := range cells {
		var sb strings.Builder
		sb.WriteString("\t")
		for i, s := range row {
			switch {
			case i == 0: // Column 0
				s += strings.Repeat(" ", maxLens[i]-len(s))
			case i%2 == 1: // Column 1, 3, 5, 7, ...
				s = strings.Repeat(" ", 6+maxLens[i]-len(s)) + s
			case i%2 == 0: // Column 2, 4, 6, 8, ...
				s = strings.Repeat(" ", 2+maxLens[i]-len(s)) + s
			}
			sb.WriteString(s)
		}
		fmt.Fprintln(w, sb.String())
	}
}

func runStats(s *StatsCmd) error {
	f, err := os.Open(s.File)
	if err != nil {
		return errors.Wrap(err, "unable to open input")
	}
	defer f.Close()

	conf := inflate.Config{
		LitBits:         s.LitBits,
		DistBits:        s.DistBits,
		PKZIPWorkaround: s.PKZIPWorkaround,
		MaxTableEntries: s.maxTableEntries,
	}
	log := logrus.WithField("file", s.File)
	start := time.Now()
	if s.Raw {
		st, err := inflate.Inflate(io.Discard, bufio.NewReader(f), &conf)
		log.Debugf("decoded in %v", time.Since(start))
		logStats(log, st)
		if err != nil {
			return errors.Wrapf(err, "%s: code %v", s.File, inflate.CodeOf(err))
		}
		return nil
	}

	res, err := gzip.NewReader(bufio.NewReader(f), &gzip.Config{Multistream: true, Inflate: conf}).Decompress(io.Discard)
	log.Debugf("decoded in %v", time.Since(start))
	for i, h := range res.Headers {
		log.WithFields(logrus.Fields{
			"member":  i,
			"name":    h.Name,
			"mtime":   h.ModTime,
			"os":      h.OS,
			"comment": h.Comment,
		}).Info("gzip member")
	}
	log.WithFields(logrus.Fields{
		"members": res.Members,
		"in":      humanBytes(res.BytesIn),
		"out":     humanBytes(res.BytesOut),
		"crc32":   fmt.Sprintf("%08x", res.CRC32),
		"garbage": res.TrailingGarbage,
	}).Info("gzip stream")
	if err != nil {
		return errors.Wrap(err, s.File)
	}
	return nil
}

func logStats(log *logrus.Entry, st inflate.Stats) {
	fields := logrus.Fields{
		"in":      humanBytes(st.BytesIn),
		"out":     humanBytes(st.BytesOut),
		"crc32":   fmt.Sprintf("%08x", st.CRC32),
		"blocks":  st.Blocks,
		"stored":  st.StoredBlocks,
		"fixed":   st.FixedBlocks,
		"dynamic": st.DynamicBlocks,
		"hufts":   st.MaxTableEntries,
	}
	if st.BytesIn > 0 {
		fields["ratio"] = fmt.Sprintf("%.2fx", float64(st.BytesOut)/float64(st.BytesIn))
	}
	log.WithFields(fields).Info("inflate stream")
}

func humanBytes(n int64) string {
	return strconv.FormatPrefix(float64(n), strconv.Base1024, 2) + "B"
}
