// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/seqfiles/util"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTokens(t *testing.T) {
	var tokens [4][]byte
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   \t ", nil},
		{"chr1\t10\t20", []string{"chr1", "10", "20"}},
		{"chr1 10  20\tname\tignored", []string{"chr1", "10", "20", "name"}},
		{"\tchr1\t10\r", []string{"chr1", "10"}},
	}
	for _, tt := range tests {
		n := util.GetTokens(tokens[:], []byte(tt.line))
		require.Equal(t, len(tt.want), n, tt.line)
		for i, want := range tt.want {
			assert.Equal(t, want, string(tokens[i]), tt.line)
		}
	}
}

func TestGetTabTokens(t *testing.T) {
	var tokens [4][]byte
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"\r", nil},
		{"read 1\t+\tchr1", []string{"read 1", "+", "chr1"}},
		{"a\t\tc\r", []string{"a", "", "c"}},
		{"a\tb\tc\td\te", []string{"a", "b", "c", "d"}},
		{"a\t", []string{"a", ""}},
	}
	for _, tt := range tests {
		n := util.GetTabTokens(tokens[:], []byte(tt.line))
		require.Equal(t, len(tt.want), n, tt.line)
		for i, want := range tt.want {
			assert.Equal(t, want, string(tokens[i]), tt.line)
		}
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, util.HasPrefix([]byte("track name=x"), "track"))
	assert.True(t, util.HasPrefix([]byte("track"), "track"))
	assert.True(t, util.HasPrefix([]byte("browser\tposition chr1"), "browser"))
	assert.False(t, util.HasPrefix([]byte("trackchr\t1\t2"), "track"))
	assert.False(t, util.HasPrefix([]byte("chr1\t1\t2"), "track"))
	assert.False(t, util.HasPrefix([]byte("tra"), "track"))
}

func TestIsHeaderToken(t *testing.T) {
	for _, tok := range []string{"#", "#comment", "track", "browser"} {
		assert.True(t, util.IsHeaderToken([]byte(tok)), tok)
	}
	for _, tok := range []string{"", "chr1", "trackchr", "browse", "chr#1"} {
		assert.False(t, util.IsHeaderToken([]byte(tok)), tok)
	}
}

func TestOutputInputRoundTrip(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	const payload = "chr1\t0\t10\nchr1\t5\t15\n"
	for _, name := range []string{"plain.bed", "compressed.bed.gz"} {
		path := filepath.Join(tmpdir, name)
		out, err := util.CreateOutput(ctx, path)
		require.NoError(t, err)
		_, err = out.Writer().Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, out.Close(ctx))

		if util.IsCompressedPath(path) {
			raw, err := ioutil.ReadFile(path)
			require.NoError(t, err)
			assert.NotEqual(t, payload, string(raw))
		}

		in, err := util.OpenInput(ctx, path)
		require.NoError(t, err)
		got, err := ioutil.ReadAll(in.Reader())
		require.NoError(t, err)
		require.NoError(t, in.Close(ctx))
		assert.Equal(t, payload, string(got), name)
	}
}

func TestStdioPaths(t *testing.T) {
	for _, p := range []string{"", "-", "stdin"} {
		assert.True(t, util.IsStdin(p))
	}
	for _, p := range []string{"", "-", "stdout"} {
		assert.True(t, util.IsStdout(p))
	}
	assert.False(t, util.IsStdin("in.bed"))
	assert.False(t, util.IsStdout("out.bed"))
}
