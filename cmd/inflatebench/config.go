// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"os"
	"sort"

	"github.com/alecthomas/kong"
	strconv "github.com/dsnet/golib/unitconv"
	"github.com/pkg/errors"

	"github.com/dsnet/inflate/internal/testutil"
	"github.com/dsnet/inflate/internal/tool/bench"
)

const EnvVarPrefix = "INFLATEBENCH"

// VERSION gets set during build
var VERSION = "0.0.0"

var (
	formatNames = map[string]bench.Format{
		bench.FormatFlate.String(): bench.FormatFlate,
		bench.FormatGzip.String():  bench.FormatGzip,
		bench.FormatXZ.String():    bench.FormatXZ,
	}
	testNames = map[string]bench.Test{
		bench.TestEncodeRate.String():    bench.TestEncodeRate,
		bench.TestDecodeRate.String():    bench.TestDecodeRate,
		bench.TestCompressRatio.String(): bench.TestCompressRatio,
	}
)

type CLI struct {
	Bench BenchCmd `kong:"cmd,default='1',help='Compare decoders across formats, inputs, levels, and sizes'"`
	Stats StatsCmd `kong:"cmd,help='Decompress a file and report decoder statistics'"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`
}

type BenchCmd struct {
	Formats []string `kong:"help='Formats to benchmark (fl, gz, xz)',default='fl,gz,xz'"`
	Tests   []string `kong:"help='Benchmark tests (encRate, decRate, ratio)',default='encRate,decRate,ratio'"`
	Codecs  []string `kong:"help='Codecs to benchmark; the first is the delta baseline',default='std,kp,ds,uk'"`
	Inputs  []string `kong:"help='Synthetic corpora or files to benchmark',default='digits,random,repeats,text,zeros'"`
	Paths   []string `kong:"help='Paths to search for input files',type='path'"`
	Levels  []string `kong:"help='Compression levels',default='1,6,9'"`
	Sizes   []string `kong:"help='Input sizes, with optional SI or IEC prefixes',default='1e4,1e5,1e6'"`
	RefEnc  []string `kong:"help='Encoders to prefer for producing decode-rate input',default='std,kp'"`

	formats []bench.Format
	tests   []bench.Test
	levels  []int
	sizes   []int
}

type StatsCmd struct {
	File            string `kong:"arg,help='Compressed input file',type='existingfile'"`
	Raw             bool   `kong:"help='Input is a raw DEFLATE stream instead of gzip',short='r'"`
	LitBits         uint   `kong:"help='Primary lookup width of the literal/length table'"`
	DistBits        uint   `kong:"help='Primary lookup width of the distance table'"`
	MaxTableEntries string `kong:"help='Per-block Huffman table entry limit (0 is unlimited)',default='0'"`
	PKZIPWorkaround bool   `kong:"name='pkzip',help='Accept any incomplete distance code'"`

	maxTableEntries int
}

func readCLIArgs(args []string) (*CLI, *kong.Context, error) {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("inflatebench"),
		kong.Description("Benchmark and inspect DEFLATE decoders"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": VERSION,
		})
	if err != nil {
		return nil, nil, errors.Wrap(err, "error building CLI parser")
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error parsing CLI args")
	}

	if err := validateCLIArgs(cli); err != nil {
		return nil, nil, errors.Wrap(err, "error validating args")
	}
	return cli, ctx, nil
}

func validateCLIArgs(cli *CLI) error {
	b := &cli.Bench
	for _, s := range b.Formats {
		f, ok := formatNames[s]
		if !ok {
			return errors.Errorf("invalid format %q (valid: %v)", s, sortedKeys(formatNames))
		}
		b.formats = append(b.formats, f)
	}
	for _, s := range b.Tests {
		t, ok := testNames[s]
		if !ok {
			return errors.Errorf("invalid test %q (valid: %v)", s, sortedKeys(testNames))
		}
		b.tests = append(b.tests, t)
	}
	for _, s := range b.Levels {
		lvl, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil {
			return errors.Wrapf(err, "invalid level %q", s)
		}
		b.levels = append(b.levels, int(lvl))
	}
	for _, s := range b.Sizes {
		n, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil || n < 0 {
			return errors.Errorf("invalid size %q", s)
		}
		b.sizes = append(b.sizes, int(n))
	}
	for _, s := range b.Inputs {
		if _, ok := testutil.Corpora[s]; !ok && len(b.Paths) == 0 && !isFile(s) {
			return errors.Errorf("input %q is neither a corpus (%v) nor a file", s, testutil.CorpusNames())
		}
	}

	st := &cli.Stats
	n, err := strconv.ParsePrefix(st.MaxTableEntries, strconv.AutoParse)
	if err != nil || n < 0 {
		return errors.Errorf("invalid max table entries %q", st.MaxTableEntries)
	}
	st.maxTableEntries = int(n)
	if st.LitBits > 16 || st.DistBits > 16 {
		return errors.New("table widths must be at most 16 bits")
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	var s []string
	for k := range m {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

func isFile(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}
