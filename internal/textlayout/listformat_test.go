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

import (
	"strings"
	"testing"
)

func TestFormatListScenarios(t *testing.T) {
	if got := FormatList("Hello", "number", ""); got != "1. Hello" {
		t.Fatalf("number: got %q", got)
	}
	if got := FormatList("Hello", "bullet", "square"); got != "■ Hello" {
		t.Fatalf("square bullet: got %q", got)
	}
}

func TestFormatListStyles(t *testing.T) {
	text := "one\ntwo\n\nthree\nfour"
	cases := []struct {
		typ, style, want string
	}{
		{"bullet", "disc", "• one\n• two\n\n• three\n• four"},
		{"bullet", "circle", "○ one\n○ two\n\n○ three\n○ four"},
		{"bullet", "dash", "– one\n– two\n\n– three\n– four"},
		{"bullet", "weird", "• one\n• two\n\n• three\n• four"},
		{"number", "decimal", "1. one\n2. two\n\n3. three\n4. four"},
		{"number", "decimal-zero", "01. one\n02. two\n\n03. three\n04. four"},
		{"number", "lower-alpha", "a. one\nb. two\n\nc. three\nd. four"},
		{"number", "upper-alpha", "A. one\nB. two\n\nC. three\nD. four"},
		{"number", "lower-roman", "i. one\nii. two\n\niii. three\niv. four"},
		{"number", "upper-roman", "I. one\nII. two\n\nIII. three\nIV. four"},
		{"none", "disc", text},
		{"", "", text},
	}
	for _, c := range cases {
		if got := FormatList(text, c.typ, c.style); got != c.want {
			t.Errorf("%s/%s: got %q want %q", c.typ, c.style, got, c.want)
		}
	}
}

func TestFormatListIdempotent(t *testing.T) {
	base := "Ceremony at 3pm\n  Dinner\n\nDancing till late\nv. last"
	types := map[string][]string{
		"bullet": {"disc", "circle", "square", "dash"},
		"number": {"decimal", "decimal-zero", "lower-alpha", "upper-alpha", "lower-roman", "upper-roman"},
	}
	for typ, styles := range types {
		for _, st := range styles {
			once := FormatList(base, typ, st)
			twice := FormatList(once, typ, st)
			if once != twice {
				t.Errorf("%s/%s not idempotent:\n once %q\ntwice %q", typ, st, once, twice)
			}
		}
	}
}

func TestFormatListSwitchesBulletGlyphs(t *testing.T) {
	disc := FormatList("Hello\nWorld", "bullet", "disc")
	if got := FormatList(disc, "bullet", "square"); got != "■ Hello\n■ World" {
		t.Fatalf("switching bullet style left stale glyphs: %q", got)
	}
	numbered := FormatList("Hello\nWorld", "number", "decimal")
	if got := FormatList(numbered, "number", "upper-roman"); got != "I. 1. Hello\nII. 2. World" {
		t.Fatalf("only the style's own sequence is a marker: %q", got)
	}
}

func TestFormatListKeepsLeadingWords(t *testing.T) {
	cases := []struct {
		text, typ, style, want string
	}{
		{"A. Lincoln", "bullet", "disc", "• A. Lincoln"},
		{"OK. see you", "bullet", "disc", "• OK. see you"},
		{"ok. fine", "number", "lower-alpha", "a. ok. fine"},
		{"1. Hello\n2. World", "bullet", "square", "■ 1. Hello\n■ 2. World"},
		{"2. second\n3. third", "number", "decimal", "1. 2. second\n2. 3. third"},
		{"1. first\nplain", "number", "decimal", "1. 1. first\n2. plain"},
		{"• typed", "number", "decimal", "1. • typed"},
	}
	for _, c := range cases {
		if got := FormatList(c.text, c.typ, c.style); got != c.want {
			t.Errorf("%q as %s/%s: got %q want %q", c.text, c.typ, c.style, got, c.want)
		}
	}
}

func TestFormatListIdempotentOnLongLists(t *testing.T) {
	lines := make([]string, 10001)
	for i := range lines {
		lines[i] = "guest"
	}
	base := strings.Join(lines, "\n")
	for _, st := range []string{"decimal", "decimal-zero", "lower-alpha", "upper-alpha", "lower-roman", "upper-roman"} {
		once := FormatList(base, "number", st)
		if twice := FormatList(once, "number", st); twice != once {
			t.Fatalf("%s not idempotent on a long list", st)
		}
	}
	once := strings.Split(FormatList(base, "number", "upper-alpha"), "\n")
	if once[702] != "AAA. guest" {
		t.Fatalf("703rd marker: %q", once[702])
	}
	once = strings.Split(FormatList(base, "number", "decimal"), "\n")
	if once[10000] != "10001. guest" {
		t.Fatalf("10001st marker: %q", once[10000])
	}
}

func TestFormatListKeepsIndentation(t *testing.T) {
	if got := FormatList("  nested", "bullet", "disc"); got != "  • nested" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatListLeavesWordsAlone(t *testing.T) {
	if got := FormatList("Mr. Smith", "bullet", "disc"); got != "• Mr. Smith" {
		t.Fatalf("got %q", got)
	}
}

func TestAlphaAndRoman(t *testing.T) {
	if alpha(1) != "A" || alpha(26) != "Z" || alpha(27) != "AA" || alpha(52) != "AZ" {
		t.Fatalf("alpha sequence wrong: %s %s %s %s", alpha(1), alpha(26), alpha(27), alpha(52))
	}
	if roman(1994) != "MCMXCIV" || roman(4) != "IV" || roman(9) != "IX" {
		t.Fatalf("roman conversion wrong: %s", roman(1994))
	}
}
