package snippets

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const scienceText = "Science[nb 1] is a systematic enterprise that builds and organizes knowledge in the form of " +
	"testable explanations and predictions about the universe.[nb 2] In an older and closely related meaning, " +
	"\"science\" also refers to this body of knowledge itself, of the type that can be rationally explained " +
	"and reliably applied. Ever since classical antiquity, science as a type of knowledge has been closely " +
	"linked to philosophy. In the West during the early modern period the words \"science\" and \"philosophy " +
	"of nature\" were sometimes used interchangeably,[2]:p.3 and until the 19th century natural philosophy " +
	"(which is today called \"natural science\")."

// Same text without the full stops after "universe" and at the very end.
const scienceTextWithoutFullStops = "Science[nb 1] is a systematic enterprise that builds and organizes knowledge in the form of " +
	"testable explanations and predictions about the universe [nb 2] In an older and closely related meaning, " +
	"\"science\" also refers to this body of knowledge itself, of the type that can be rationally explained " +
	"and reliably applied. Ever since classical antiquity, science as a type of knowledge has been closely " +
	"linked to philosophy. In the West during the early modern period the words \"science\" and \"philosophy " +
	"of nature\" were sometimes used interchangeably,[2]:p.3 and until the 19th century natural philosophy " +
	"(which is today called \"natural science\")"

const linkedToPhilosophy = "Ever since classical antiquity, science as a type of knowledge has been closely linked to philosophy."

func checkOffsets(t *testing.T, got []Snippet) {
	t.Helper()
	for i, s := range got {
		for _, m := range s.Terms {
			if m.Start < 0 || m.End() > len(s.Text) {
				t.Fatalf("snippet %d: match %+v out of range for %q", i, m, s.Text)
			}
			if s.Text[m.Start:m.End()] != m.Text {
				t.Fatalf("snippet %d: match %+v does not point at %q", i, m, s.Text[m.Start:m.End()])
			}
		}
	}
}

func TestBuild_TermGeneratesSnippets(t *testing.T) {
	got := Build(scienceText, []string{"philosophy"}, Config{})
	want := []Snippet{
		{
			Text:  linkedToPhilosophy,
			Terms: []MatchedTerm{{Text: "philosophy", Start: 90, Length: 10}},
		},
		{
			Text: "... early modern period the words \"science\" and \" philosophy of nature\" were sometimes used " +
				"interchangeably,[2]:p.3 and until the 19th century natural philosophy (which is today called \"natural science\").",
			Terms: []MatchedTerm{
				{Text: "philosophy", Start: 50, Length: 10},
				{Text: "philosophy", Start: 151, Length: 10},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snippets mismatch (-want +got):\n%s", diff)
	}
	checkOffsets(t, got)
}

func TestBuild_TermCaseIsIgnored(t *testing.T) {
	got := Build(scienceText, []string{"PHILosophy"}, Config{})
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
	if got[0].Text != linkedToPhilosophy {
		t.Fatalf("unexpected first snippet: %q", got[0].Text)
	}
	for _, s := range got {
		for _, m := range s.Terms {
			if m.Text != "philosophy" {
				t.Fatalf("expected original casing, got %q", m.Text)
			}
		}
	}
	if len(got[1].Terms) != 2 {
		t.Fatalf("expected 2 matches in trimmed snippet, got %d", len(got[1].Terms))
	}
	checkOffsets(t, got)
}

func TestBuild_MultipleTerms(t *testing.T) {
	b := New(Config{}).WithBreaker(Punctuation)
	got := b.Build(scienceText, []string{"Science", "systematic enterprise"})
	if len(got) != 4 {
		t.Fatalf("expected 4 snippets, got %d: %#v", len(got), got)
	}
	want := []Snippet{
		{
			Text: "Science[nb 1] is a systematic enterprise that builds and organizes knowledge in the form of " +
				"testable explanations and predictions about the universe.",
			Terms: []MatchedTerm{
				{Text: "Science", Start: 0, Length: 7},
				{Text: "systematic enterprise", Start: 19, Length: 21},
			},
		},
		{
			Text: "[nb 2] In an older and closely related meaning, \"science\" also refers to this body of knowledge " +
				"itself, of the type that can be rationally explained and reliably applied.",
			Terms: []MatchedTerm{{Text: "science", Start: 49, Length: 7}},
		},
		{
			Text:  linkedToPhilosophy,
			Terms: []MatchedTerm{{Text: "science", Start: 32, Length: 7}},
		},
	}
	if diff := cmp.Diff(want, got[:3]); diff != "" {
		t.Fatalf("snippets mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(got[3].Text, "...") {
		t.Fatalf("expected trimmed last snippet, got %q", got[3].Text)
	}
	checkOffsets(t, got)
}

func TestBuild_MultipleTermsUAX29(t *testing.T) {
	// UAX #29 keeps "universe.[nb 2] In" in one sentence.
	got := Build(scienceText, []string{"Science", "systematic enterprise"}, Config{})
	if len(got) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(got))
	}
	want := Snippet{
		Text: "Science[nb 1] is a systematic enterprise that builds and organizes knowledge in the form of " +
			"testable explanations and predictions about the universe.[nb 2] In an older and closely related " +
			"meaning, \"science\" ...",
		Terms: []MatchedTerm{
			{Text: "Science", Start: 0, Length: 7},
			{Text: "science", Start: 198, Length: 7},
			{Text: "systematic enterprise", Start: 19, Length: 21},
		},
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("first snippet mismatch (-want +got):\n%s", diff)
	}
	checkOffsets(t, got)
}

func TestBuild_SingleSnippet(t *testing.T) {
	term := "systematic enterprise"
	got := New(Config{}).WithBreaker(Punctuation).Build(scienceText, []string{term})
	want := []Snippet{{
		Text: "Science[nb 1] is a systematic enterprise that builds and organizes knowledge in the form of " +
			"testable explanations and predictions about the universe.",
		Terms: []MatchedTerm{{Text: term, Start: 19, Length: len(term)}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snippets mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EmptyInputs(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		terms []string
	}{
		{name: "nil terms", text: scienceText, terms: nil},
		{name: "empty text", text: "", terms: []string{"philosophy"}},
		{name: "empty text and terms", text: "", terms: nil},
		{name: "blank terms", text: scienceText, terms: []string{"", "   ", "\t"}},
		{name: "no match", text: scienceText, terms: []string{"This term should not match"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Build(tc.text, tc.terms, Config{})
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", got)
			}
		})
	}
}

func TestBuild_LargeSnippetsGetTrimmed(t *testing.T) {
	trimmedStart := "Science[nb 1] is a systematic enterprise that builds and organizes knowledge in the form of " +
		"testable explanations and predictions about the universe [nb 2] In an older and closely related meaning, \"science\" ..."

	cases := []struct {
		name  string
		terms []string
		want  []Snippet
	}{
		{
			name:  "term in first sentence",
			terms: []string{"systematic enterprise"},
			want: []Snippet{{
				Text:  trimmedStart,
				Terms: []MatchedTerm{{Text: "systematic enterprise", Start: 19, Length: 21}},
			}},
		},
		{
			name:  "term at start",
			terms: []string{"Science[nb 1]"},
			want: []Snippet{{
				Text:  trimmedStart,
				Terms: []MatchedTerm{{Text: "Science[nb 1]", Start: 0, Length: 13}},
			}},
		},
		{
			name:  "term at end",
			terms: []string{"(which is today called \"natural science\")"},
			want: []Snippet{{
				Text: "... the early modern period the words \"science\" and \"philosophy of nature\" were sometimes used " +
					"interchangeably,[2]:p.3 and until the 19th century natural philosophy (which is today called \"natural science\")",
				Terms: []MatchedTerm{{Text: "(which is today called \"natural science\")", Start: 165, Length: 41}},
			}},
		},
		{
			name:  "two terms in one sentence",
			terms: []string{"knowledge itself", "rationally explained"},
			want: []Snippet{{
				Text: "... predictions about the universe [nb 2] In an older and closely related meaning, \"science\" also " +
					"refers to this body of knowledge itself, of the type that can be rationally explained and reliably applied.",
				Terms: []MatchedTerm{
					{Text: "knowledge itself", Start: 121, Length: 16},
					{Text: "rationally explained", Start: 163, Length: 20},
				},
			}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Build(scienceTextWithoutFullStops, tc.terms, Config{})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("snippets mismatch (-want +got):\n%s", diff)
			}
			checkOffsets(t, got)
		})
	}
}

func TestBuild_KeywordFirstHasNoLeadingEllipsis(t *testing.T) {
	got := Build(scienceTextWithoutFullStops, []string{"science[NB 1]"}, Config{})
	if len(got) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(got))
	}
	if strings.HasPrefix(got[0].Text, "...") {
		t.Fatalf("unexpected leading ellipsis: %q", got[0].Text)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	terms := []string{"science", "philosophy", "knowledge"}
	b := New(Config{})
	first := b.Build(scienceText, terms)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, b.Build(scienceText, terms)); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
	checkOffsets(t, first)
}

func TestBuild_SizerRunsOnOversizedSentences(t *testing.T) {
	got := Build(scienceText, []string{"knowledge"}, Config{MaxLength: 80})
	want := []Snippet{
		{
			Text:  "... a systematic enterprise that builds and organizes knowledge in the form of testable ...",
			Terms: []MatchedTerm{{Text: "knowledge", Start: 54, Length: 9}},
		},
		{
			// Backfill may overshoot the budget by one word.
			Text:  "... classical antiquity, science as a type of knowledge has been closely linked to philosophy.",
			Terms: []MatchedTerm{{Text: "knowledge", Start: 46, Length: 9}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snippets mismatch (-want +got):\n%s", diff)
	}
	checkOffsets(t, got)
}

func TestConfig_Defaults(t *testing.T) {
	got := New(Config{MaxLength: 150, Lookahead: -1}).Config()
	want := Config{MinLength: DefaultMinLength, MaxLength: 150, Lookahead: DefaultLookahead}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultConfig(), New(Config{}).Config()); diff != "" {
		t.Fatalf("zero config mismatch (-want +got):\n%s", diff)
	}
}
