package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustKeyword(t testing.TB, pattern string, opts ...Option) *Matcher {
	t.Helper()
	m, err := Keyword(pattern, opts...)
	require.NoError(t, err)
	return m
}

func mustPunctuation(t testing.TB, chars string, opts ...Option) *Matcher {
	t.Helper()
	m, err := Punctuation(chars, opts...)
	require.NoError(t, err)
	return m
}

func mustString(t testing.TB, fences string, opts ...Option) *Matcher {
	t.Helper()
	f, err := ParseFences(fences)
	require.NoError(t, err)
	m, err := String(f, opts...)
	require.NoError(t, err)
	return m
}

func mustComment(t testing.TB, fences string, opts ...Option) *Matcher {
	t.Helper()
	f, err := ParseFences(fences)
	require.NoError(t, err)
	m, err := Comment(f, opts...)
	require.NoError(t, err)
	return m
}

// clike is a small C-like definition: comments, strings, keywords,
// punctuation in descending priority.
func clike(t testing.TB) Definition {
	return Definition{
		Single(mustComment(t, "/*,*/|//,\n")),
		Single(mustString(t, `","|','`)),
		Single(mustKeyword(t, `\b(?:if|else|return|func)\b`)),
		Single(mustPunctuation(t, "{}();=+")),
	}
}

func TestTokenize_KeywordAndPunctuation(t *testing.T) {
	def := Definition{
		Single(mustPunctuation(t, "{}")),
		Single(mustKeyword(t, "if")),
	}

	got := Tokenize(def, "if{}")
	require.Equal(t, []Token{
		{Class: ClassKeyword, Value: "if", Index: 0},
		{Class: ClassPunctuation, Value: "{", Index: 2},
		{Class: ClassPunctuation, Value: "}", Index: 3},
	}, got)
}

func TestTokenize_StringFence(t *testing.T) {
	def := Definition{Single(mustString(t, `","`))}

	got := Tokenize(def, `a "b" c`)
	require.Equal(t, []Token{{Class: ClassString, Value: `"b"`, Index: 2}}, got)
}

func TestTokenize_EmptyAndUnmatched(t *testing.T) {
	def := clike(t)
	require.Empty(t, Tokenize(def, ""))
	require.Empty(t, Tokenize(def, "plain words only"))
	require.Empty(t, Tokenize(nil, "if {}"))
}

func TestTokenize_ProximityBeatsDeclarationOrder(t *testing.T) {
	// punctuation is declared last but occurs first
	got := Tokenize(clike(t), `x = "s"`)
	require.Equal(t, []Token{
		{Class: ClassPunctuation, Value: "=", Index: 2},
		{Class: ClassString, Value: `"s"`, Index: 4},
	}, got)
}

func TestTokenize_DeclarationOrderBreaksTies(t *testing.T) {
	// both rules start at offset 0; the earlier one wins
	def := Definition{
		Single(mustKeyword(t, `ab`)),
		Single(MustMatcher(ClassSpecial, `abc`, AbsorbNone)),
	}
	got := Tokenize(def, "abc")
	require.Equal(t, []Token{{Class: ClassKeyword, Value: "ab", Index: 0}}, got)

	def[0], def[1] = def[1], def[0]
	got = Tokenize(def, "abc")
	require.Equal(t, []Token{{Class: ClassSpecial, Value: "abc", Index: 0}}, got)
}

func TestTokenize_CommentHidesKeywordsInside(t *testing.T) {
	got := Tokenize(clike(t), "// if else\nreturn")
	require.Equal(t, []Token{
		{Class: ClassComment, Value: "// if else\n", Index: 0},
		{Class: ClassKeyword, Value: "return", Index: 11},
	}, got)
}

func TestTokenize_FailedCandidateFallsThrough(t *testing.T) {
	// the sequential rule locates "func" but fails without a name, so the
	// plain keyword rule wins at the same offset
	name := MustMatcher(ClassSpecial, `[A-Za-z_]\w*`, AbsorbLeading)
	def := Definition{
		Seq(Match(mustKeyword(t, `\bfunc\b`)), Match(name)),
		Single(mustKeyword(t, `\bfunc\b`)),
		Single(mustPunctuation(t, "()")),
	}

	got := Tokenize(def, "func main()")
	require.Equal(t, []Token{
		{Class: ClassKeyword, Value: "func", Index: 0},
		{Class: ClassSpecial, Value: " main", Index: 4},
		{Class: ClassPunctuation, Value: "(", Index: 9},
		{Class: ClassPunctuation, Value: ")", Index: 10},
	}, got)

	got = Tokenize(def, "func ()")
	require.Equal(t, []Token{
		{Class: ClassKeyword, Value: "func", Index: 0},
		{Class: ClassPunctuation, Value: "(", Index: 5},
		{Class: ClassPunctuation, Value: ")", Index: 6},
	}, got)
}

func TestTokenize_RepetitionGroup(t *testing.T) {
	str := mustString(t, `","`, WithAbsorb(AbsorbLeading))
	comma := mustPunctuation(t, ",", WithAbsorb(AbsorbLeading))
	def := Definition{
		Seq(
			Match(mustKeyword(t, `\bimport\b`)),
			Match(mustPunctuation(t, "(", WithAbsorb(AbsorbLeading))),
			Repeat(Match(str), Repeat(Match(comma))),
			Match(mustPunctuation(t, ")", WithAbsorb(AbsorbLeading))),
		),
	}

	got := Tokenize(def, `import ("a", "b")`)
	require.Equal(t, []Token{
		{Class: ClassKeyword, Value: "import", Index: 0},
		{Class: ClassPunctuation, Value: " (", Index: 6},
		{Class: ClassString, Value: `"a"`, Index: 8},
		{Class: ClassPunctuation, Value: ",", Index: 11},
		{Class: ClassString, Value: ` "b"`, Index: 12},
		{Class: ClassPunctuation, Value: ")", Index: 16},
	}, got)
}

func TestTokenize_RepetitionGroupThatCannotAdvance(t *testing.T) {
	def := Definition{
		Seq(
			Match(mustKeyword(t, `import`)),
			Repeat(Match(mustString(t, `","`, WithAbsorb(AbsorbLeading)))),
			Match(mustPunctuation(t, ";")),
		),
	}

	got := Tokenize(def, "import;")
	require.Equal(t, []Token{
		{Class: ClassKeyword, Value: "import", Index: 0},
		{Class: ClassPunctuation, Value: ";", Index: 6},
	}, got)
}

func TestTokenize_SkipTokens(t *testing.T) {
	def := Definition{
		Seq(
			Match(mustKeyword(t, `let`)),
			Match(MustMatcher(ClassSkip, `\s*\w+`, AbsorbNone)),
			Match(mustPunctuation(t, "=", WithAbsorb(AbsorbLeading))),
		),
	}

	got := Tokenize(def, "let x = 1")
	require.Equal(t, []Token{
		{Class: ClassKeyword, Value: "let", Index: 0},
		{Class: ClassSkip, Value: " x", Index: 3},
		{Class: ClassPunctuation, Value: " =", Index: 5},
	}, got)
	require.Equal(t, "<span class='keyword'>let</span> x<span class='punctuation'> =</span> 1", Render("let x = 1", got))
}

func TestTokenize_StopsWhenNoCandidateSucceeds(t *testing.T) {
	// the only candidate at the cursor fails, so the scan ends there even
	// though a later "if(" would match
	def := Definition{
		Seq(Match(mustKeyword(t, `if`)), Match(mustPunctuation(t, "("))),
	}
	require.Empty(t, Tokenize(def, "if x if("))

	got := Tokenize(def, "if(if x")
	require.Equal(t, []Token{
		{Class: ClassKeyword, Value: "if", Index: 0},
		{Class: ClassPunctuation, Value: "(", Index: 2},
	}, got)
}

func TestTokenize_EmptyMatchesAreNotCandidates(t *testing.T) {
	def := Definition{
		Single(MustMatcher(ClassSpecial, `x*`, AbsorbNone)),
		Single(mustKeyword(t, `if`)),
	}
	got := Tokenize(def, "ab if")
	require.Equal(t, []Token{{Class: ClassKeyword, Value: "if", Index: 3}}, got)
}

func TestTokenize_RuneOffsets(t *testing.T) {
	got := Tokenize(clike(t), `"é" if`)
	require.Equal(t, []Token{
		{Class: ClassString, Value: `"é"`, Index: 0},
		{Class: ClassKeyword, Value: "if", Index: 4},
	}, got)
}

func TestDefinition_Validate(t *testing.T) {
	kw := mustKeyword(t, "if")

	require.NoError(t, clike(t).Validate())
	require.NoError(t, Definition{Seq(Match(kw), Repeat(Match(kw)))}.Validate())

	require.Error(t, Definition{Rule{}}.Validate())
	require.Error(t, Definition{Seq(Repeat(Match(kw)))}.Validate())
	require.Error(t, Definition{Seq(Match(kw), Repeat())}.Validate())
	require.Error(t, Definition{Seq(Leaf{})}.Validate())
	require.Error(t, Definition{Seq(Match(kw), nil)}.Validate())
}

// ============================================================================
// Property-Based Tests
// ============================================================================

var textGen = rapid.StringMatching(`[a-z{}();="'/*\\ \n<>&é]{0,60}`)

// TestProperty_TokensDoNotOverlap verifies the scanner emits ordered,
// non-empty, non-overlapping tokens that match the input text.
func TestProperty_TokensDoNotOverlap(t *testing.T) {
	def := clike(t)
	rapid.Check(t, func(t *rapid.T) {
		text := textGen.Draw(t, "text")
		runes := []rune(text)
		tokens := Tokenize(def, text)

		prevEnd := 0
		for i, tok := range tokens {
			require.NotEmpty(t, tok.Value, "token %d is empty", i)
			require.GreaterOrEqual(t, tok.Index, prevEnd, "token %d overlaps its predecessor", i)
			require.LessOrEqual(t, tok.End(), len(runes))
			require.Equal(t, string(runes[tok.Index:tok.End()]), tok.Value)
			prevEnd = tok.End()
		}
	})
}

// TestProperty_Deterministic verifies repeated scans agree.
func TestProperty_Deterministic(t *testing.T) {
	def := clike(t)
	rapid.Check(t, func(t *rapid.T) {
		text := textGen.Draw(t, "text")
		require.Equal(t, Tokenize(def, text), Tokenize(def, text))
		require.Equal(t, Render(text, Tokenize(def, text)), Render(text, Tokenize(def, text)))
	})
}

// TestProperty_Terminates scans with arbitrary definitions built from
// fragments that may match empty strings.
func TestProperty_Terminates(t *testing.T) {
	fragments := []string{`a*`, `\s*`, `x?`, `a`, `b+`, `\w`, `(?:ab)*`, `.`, `$`, `^`}
	classes := []Class{ClassKeyword, ClassSpecial, ClassSkip, ClassString}
	absorbs := []Absorb{AbsorbNone, AbsorbLeading, AbsorbTrailing, AbsorbBoth}

	rapid.Check(t, func(t *rapid.T) {
		element := func(label string) *Matcher {
			return MustMatcher(
				rapid.SampledFrom(classes).Draw(t, label+"-class"),
				rapid.SampledFrom(fragments).Draw(t, label+"-pattern"),
				rapid.SampledFrom(absorbs).Draw(t, label+"-absorb"),
			)
		}

		var def Definition
		for range rapid.IntRange(0, 4).Draw(t, "rules") {
			rule := Seq(Match(element("first")))
			if rapid.Bool().Draw(t, "repeat") {
				rule = append(rule, Repeat(Match(element("inner")), Repeat(Match(element("nested")))))
			}
			if rapid.Bool().Draw(t, "tail") {
				rule = append(rule, Match(element("tail")))
			}
			def = append(def, rule)
		}

		text := rapid.StringMatching(`[ab x\n]{0,30}`).Draw(t, "text")
		tokens := Tokenize(def, text)

		prevEnd := 0
		for _, tok := range tokens {
			require.NotEmpty(t, tok.Value)
			require.GreaterOrEqual(t, tok.Index, prevEnd)
			prevEnd = tok.End()
		}
		require.LessOrEqual(t, prevEnd, len([]rune(text)))
	})
}
