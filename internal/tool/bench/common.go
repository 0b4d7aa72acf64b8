// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares the performance of DEFLATE decoders and their
// reference encoders with respect to encode speed, decode speed, and ratio.
package bench

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"runtime"
	"strings"
	"testing"

	strconv "github.com/dsnet/golib/unitconv"

	"github.com/dsnet/inflate/internal/testutil"
)

type Format int

const (
	FormatFlate Format = iota
	FormatGzip
	FormatXZ
)

func (f Format) String() string {
	switch f {
	case FormatFlate:
		return "fl"
	case FormatGzip:
		return "gz"
	case FormatXZ:
		return "xz"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

type Test int

const (
	TestEncodeRate Test = iota
	TestDecodeRate
	TestCompressRatio
)

func (t Test) String() string {
	switch t {
	case TestEncodeRate:
		return "encRate"
	case TestDecodeRate:
		return "decRate"
	case TestCompressRatio:
		return "ratio"
	}
	return fmt.Sprintf("Test(%d)", int(t))
}

type Encoder func(io.Writer, int) io.WriteCloser
type Decoder func(io.Reader) io.ReadCloser

// errReadCloser reports err from every call. It stands in for a decoder
// whose constructor failed, so the failure surfaces on the first Read.
type errReadCloser struct{ err error }

func (e errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errReadCloser) Close() error             { return e.err }

var (
	Encoders map[Format]map[string]Encoder
	Decoders map[Format]map[string]Decoder

	// List of search paths for input files that are not synthetic corpora.
	Paths []string
)

func RegisterEncoder(format Format, name string, enc Encoder) {
	if Encoders == nil {
		Encoders = make(map[Format]map[string]Encoder)
	}
	if Encoders[format] == nil {
		Encoders[format] = make(map[string]Encoder)
	}
	Encoders[format][name] = enc
}

func RegisterDecoder(format Format, name string, dec Decoder) {
	if Decoders == nil {
		Decoders = make(map[Format]map[string]Decoder)
	}
	if Decoders[format] == nil {
		Decoders[format] = make(map[string]Decoder)
	}
	Decoders[format][name] = dec
}

// ReferenceEncoder returns the first encoder registered for format among
// names, or any encoder for format if none of them is registered.
//
// Decode-rate trials must all decompress the same bytes, so the suite picks
// one encoder up front to produce them.
func ReferenceEncoder(format Format, names ...string) Encoder {
	for _, c := range names {
		if enc, ok := Encoders[format][c]; ok {
			return enc
		}
	}
	for _, enc := range Encoders[format] {
		return enc
	}
	return nil
}

// BenchmarkEncoder benchmarks a single encoder on the given input data using
// the selected compression level and reports the result.
func BenchmarkEncoder(input []byte, enc Encoder, lvl int) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if enc == nil {
			b.Fatalf("unexpected error: nil Encoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			wr := enc(io.Discard, lvl)
			_, err := io.Copy(wr, bytes.NewReader(input))
			if err := wr.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(len(input)))
		}
	})
}

type Result struct {
	R float64 // Rate (MB/s) or ratio (rawSize/compSize)
	D float64 // Delta ratio relative to primary benchmark
}

// BenchmarkEncoderSuite runs multiple benchmarks across all encoder
// implementations, inputs, levels, and sizes.
//
// The values returned have the following structure:
//
//	results: [len(inputs)*len(levels)*len(sizes)][len(encs)]Result
//	names:   [len(inputs)*len(levels)*len(sizes)]string
func BenchmarkEncoderSuite(format Format, encs, inputs []string, levels, sizes []int, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(encs, inputs, levels, sizes, tick,
		func(input []byte, enc string, lvl int) Result {
			result := BenchmarkEncoder(input, Encoders[format][enc], lvl)
			return rateOf(result)
		})
}

// BenchmarkDecoder benchmarks a single decoder on the given pre-compressed
// input data and reports the result.
func BenchmarkDecoder(input []byte, dec Decoder) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if dec == nil {
			b.Fatalf("unexpected error: nil Decoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			rd := dec(bufio.NewReader(bytes.NewReader(input)))
			cnt, err := io.Copy(io.Discard, rd)
			if err := rd.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(cnt)
		}
	})
}

// BenchmarkDecoderSuite runs multiple benchmarks across all decoder
// implementations, inputs, levels, and sizes. Each input is first compressed
// with ref at the given level.
//
// The values returned have the following structure:
//
//	results: [len(inputs)*len(levels)*len(sizes)][len(decs)]Result
//	names:   [len(inputs)*len(levels)*len(sizes)]string
func BenchmarkDecoderSuite(format Format, decs, inputs []string, levels, sizes []int, ref Encoder, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(decs, inputs, levels, sizes, tick,
		func(input []byte, dec string, lvl int) Result {
			output, err := encode(ref, input, lvl)
			if err != nil {
				return Result{}
			}
			result := BenchmarkDecoder(output, Decoders[format][dec])
			return rateOf(result)
		})
}

// BenchmarkRatioSuite runs multiple benchmarks across all encoder
// implementations, inputs, levels, and sizes.
//
// The values returned have the following structure:
//
//	results: [len(inputs)*len(levels)*len(sizes)][len(encs)]Result
//	names:   [len(inputs)*len(levels)*len(sizes)]string
func BenchmarkRatioSuite(format Format, encs, inputs []string, levels, sizes []int, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(encs, inputs, levels, sizes, tick,
		func(input []byte, enc string, lvl int) Result {
			output, err := encode(Encoders[format][enc], input, lvl)
			if err != nil || len(output) == 0 {
				return Result{}
			}
			return Result{R: float64(len(input)) / float64(len(output))}
		})
}

func encode(enc Encoder, input []byte, lvl int) ([]byte, error) {
	if enc == nil {
		return nil, fmt.Errorf("nil Encoder")
	}
	buf := new(bytes.Buffer)
	wr := enc(buf, lvl)
	if _, err := io.Copy(wr, bytes.NewReader(input)); err != nil {
		return nil, err
	}
	if err := wr.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rateOf(result testing.BenchmarkResult) Result {
	if result.N == 0 {
		return Result{}
	}
	us := (float64(result.T.Nanoseconds()) / 1e3) / float64(result.N)
	return Result{R: float64(result.Bytes) / us}
}

type benchFunc func(input []byte, codec string, level int) Result

func benchmarkSuite(codecs, inputs []string, levels, sizes []int, tick func(), run benchFunc) ([][]Result, []string) {
	// Allocate buffers for the result.
	d0 := len(inputs) * len(levels) * len(sizes)
	d1 := len(codecs)
	results := make([][]Result, d0)
	for i := range results {
		results[i] = make([]Result, d1)
	}
	names := make([]string, d0)

	// Run the benchmark for every codec, input, level, and size.
	var i int
	for _, f := range inputs {
		for _, l := range levels {
			for _, n := range sizes {
				b, err := LoadInput(f, n)
				name := getName(f, l, len(b))
				for j, c := range codecs {
					if tick != nil {
						tick()
					}
					names[i] = name
					if err == nil {
						results[i][j] = run(b, c, l)
					}
					results[i][j].D = results[i][j].R / results[i][0].R
				}
				i++
			}
		}
	}
	return results, names
}

// LoadInput returns n bytes of the named input. Names of the synthetic
// corpora in testutil.Corpora are generated; any other name is read as a
// file, searched for in Paths.
func LoadInput(name string, n int) ([]byte, error) {
	if gen, ok := testutil.Corpora[name]; ok {
		return gen(n), nil
	}
	return testutil.LoadFile(getPath(name), n)
}

func getPath(file string) string {
	if path.IsAbs(file) {
		return file
	}
	for _, p := range Paths {
		p = path.Join(p, file)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return file
}

var expRegexp = regexp.MustCompile(`\.0*e\+0*`)

func getName(f string, l, n int) string {
	var sn string
	switch n {
	case 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12:
		sn = expRegexp.ReplaceAllString(fmt.Sprintf("%e", float64(n)), "e")
	default:
		s := strconv.FormatPrefix(float64(n), strconv.Base1024, 2)
		sn = strings.Replace(s, ".00", "", -1)
	}
	return fmt.Sprintf("%s:%d:%s", path.Base(f), l, sn)
}
