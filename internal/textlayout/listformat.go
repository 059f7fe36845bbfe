/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textlayout

// List formatting is a display-only transform of a text object's content.
// The stored text is never rewritten. Markers of the requested family are
// stripped before being re-added so formatting is idempotent: any bullet
// glyph for bullets, and for numbers the style's own sequence, only when
// every non-blank line already carries it in order.

import (
	"strconv"
	"strings"
)

// Bullet styles.
const (
	BulletDisc   = "disc"
	BulletCircle = "circle"
	BulletSquare = "square"
	BulletDash   = "dash"
)

// Number styles.
const (
	NumberDecimal     = "decimal"
	NumberDecimalZero = "decimal-zero"
	NumberLowerAlpha  = "lower-alpha"
	NumberUpperAlpha  = "upper-alpha"
	NumberLowerRoman  = "lower-roman"
	NumberUpperRoman  = "upper-roman"
)

var bulletGlyphs = map[string]string{
	BulletDisc:   "•",
	BulletCircle: "○",
	BulletSquare: "■",
	BulletDash:   "–",
}

// FormatList prefixes every non-blank line of text with a list marker.
// listType is "bullet" or "number"; anything else returns text unchanged.
// Unknown styles fall back to disc bullets and decimal numbers.
func FormatList(text, listType, listStyle string) string {
	var mark func(n int) string
	switch listType {
	case "bullet":
		g := bulletMarker(listStyle)
		mark = func(int) string { return g }
	case "number":
		mark = func(n int) string { return numberMarker(n, listStyle) }
	default:
		return text
	}
	lines := strings.Split(text, "\n")
	numbered := listType == "number" && carriesSequence(lines, mark)
	n := 0
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		n++
		indent, body := splitIndent(ln)
		switch {
		case listType == "bullet":
			body = stripBullet(body)
		case numbered:
			body = trimMarker(body, mark(n))
		}
		lines[i] = indent + mark(n) + " " + body
	}
	return strings.Join(lines, "\n")
}

// carriesSequence reports whether every non-blank line starts with the
// marker mark gives for its ordinal.
func carriesSequence(lines []string, mark func(int) string) bool {
	n := 0
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		n++
		if _, body := splitIndent(ln); !hasMarker(body, mark(n)) {
			return false
		}
	}
	return n > 0
}

func splitIndent(line string) (indent, body string) {
	body = strings.TrimLeft(line, " \t")
	return line[:len(line)-len(body)], body
}

// hasMarker reports whether body starts with m followed by a space or tab.
func hasMarker(body, m string) bool {
	return len(body) > len(m) && strings.HasPrefix(body, m) && (body[len(m)] == ' ' || body[len(m)] == '\t')
}

func trimMarker(body, m string) string {
	return strings.TrimLeft(body[len(m):], " \t")
}

func stripBullet(body string) string {
	for _, g := range bulletGlyphs {
		if hasMarker(body, g) {
			return trimMarker(body, g)
		}
	}
	return body
}

func bulletMarker(style string) string {
	if g, ok := bulletGlyphs[style]; ok {
		return g
	}
	return bulletGlyphs[BulletDisc]
}

func numberMarker(n int, style string) string {
	switch style {
	case NumberDecimalZero:
		if n < 10 {
			return "0" + strconv.Itoa(n) + "."
		}
		return strconv.Itoa(n) + "."
	case NumberLowerAlpha:
		return strings.ToLower(alpha(n)) + "."
	case NumberUpperAlpha:
		return alpha(n) + "."
	case NumberLowerRoman:
		return strings.ToLower(roman(n)) + "."
	case NumberUpperRoman:
		return roman(n) + "."
	default:
		return strconv.Itoa(n) + "."
	}
}

// alpha renders 1 -> A, 26 -> Z, 27 -> AA.
func alpha(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

var romanTable = []struct {
	v int
	s string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func roman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.v {
			sb.WriteString(r.s)
			n -= r.v
		}
	}
	return sb.String()
}
