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

// Package util contains small helpers shared by the seqfiles packages:
// allocation-free line tokenizing and input/output stream setup.
package util

// GetTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter, so both tab- and space-separated BED files are
// accepted.
//
// The saved tokens alias curLine; copy them before curLine is overwritten.
func GetTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		// These simple loops are better than any of the standard library
		// string-split functions when few tokens are expected.
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// HasPrefix reports whether the first token of line is exactly word.  It is
// used to recognize "track" and "browser" metadata lines.
func HasPrefix(line []byte, word string) bool {
	if len(line) < len(word) {
		return false
	}
	if string(line[:len(word)]) != word {
		return false
	}
	return len(line) == len(word) || line[len(word)] <= ' '
}

// GetTabTokens is like GetTokens, except that only '\t' delimits tokens, so
// empty and space-containing fields are preserved.  A trailing '\r' is
// dropped.
func GetTabTokens(tokens [][]byte, curLine []byte) int {
	if n := len(curLine); n != 0 && curLine[n-1] == '\r' {
		curLine = curLine[:n-1]
	}
	if len(curLine) == 0 {
		return 0
	}
	pos := 0
	for tokenIdx := range tokens {
		end := pos
		for end != len(curLine) && curLine[end] != '\t' {
			end++
		}
		tokens[tokenIdx] = curLine[pos:end]
		if end == len(curLine) {
			return tokenIdx + 1
		}
		pos = end + 1
	}
	return len(tokens)
}

// IsHeaderToken reports whether tok, the first token of a line, marks a BED
// comment, track or browser line.
func IsHeaderToken(tok []byte) bool {
	if len(tok) == 0 {
		return false
	}
	return tok[0] == '#' || string(tok) == "track" || string(tok) == "browser"
}
