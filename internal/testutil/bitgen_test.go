// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"encoding/hex"
	"testing"
)

func TestDecodeBitGen(t *testing.T) {
	var vectors = []struct {
		in   string
		want string // Hex output, or "" for an error
	}{{
		in: `<<<
			< 0 00 P            # Non-last, stored block, align
			< H16:0002 H16:fffd # Size: 2
			X:6869              # Data
			< 1 01 > 0000000    # Last, fixed block, EOB
		`,
		want: "000200fdff68690300",
	}, {
		in:   "<<< 1*8 0*4 >0001 D4:3 H4:c",
		want: "ff80c3",
	}, {
		in:   "<<< > 110 < 110 P X:00*2",
		want: "330000",
	}, {
		in:   "<<< D64:18446744073709551615",
		want: "ffffffffffffffff",
	}, {
		in: ">>> 0",
	}, {
		in: "<<< 1 X:00",
	}, {
		in: "<<< D3:8",
	}, {
		in: "<<< 012",
	}, {
		in: "",
	}}

	for i, v := range vectors {
		got, err := DecodeBitGen(v.in)
		if v.want == "" {
			if err == nil {
				t.Errorf("test %d, unexpected success: %x", i, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d, unexpected error: %v", i, err)
			continue
		}
		if hex.EncodeToString(got) != v.want {
			t.Errorf("test %d, output mismatch:\ngot  %x\nwant %s", i, got, v.want)
		}
	}
}
