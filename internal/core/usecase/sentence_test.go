package usecase

import (
	"reflect"
	"testing"
)

func TestSplitSentencesOnPunctuationAndNewlines(t *testing.T) {
	got := splitSentences("First sentence. Second one!\nThird on its own line")
	want := []string{"First sentence.", "Second one!", "Third on its own line"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitSentences() = %v, want %v", got, want)
	}
}

func TestSplitSentencesKeepsUnsplittableChunkWhole(t *testing.T) {
	got := splitSentences("  v2.3.1-rc4  ")
	if len(got) != 1 || got[0] != "v2.3.1-rc4" {
		t.Fatalf("expected whole trimmed chunk, got %v", got)
	}
}

func TestSplitSentencesEmptyInput(t *testing.T) {
	if got := splitSentences("   \n  "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestSplitSentencesDoesNotSplitInsideVersionNumbers(t *testing.T) {
	got := splitSentences("Supported release is 2.14.1 since last spring.")
	if len(got) != 1 {
		t.Fatalf("version dots must not split the sentence, got %v", got)
	}
}

func TestBestSentencePrefersDottedDateForSemesterQuestion(t *testing.T) {
	chunk := "Start of semester: 15.09.2025. Rooms open at 8am."
	got := bestSentence("When does the semester start?", chunk, nil)
	if got != "Start of semester: 15.09.2025." {
		t.Fatalf("bestSentence() = %q", got)
	}
}

func TestBestSentenceHintShortCircuitsScorer(t *testing.T) {
	chunk := "Many long sentences about nothing at all here. Start of semester: 15.09.2025."
	got := bestSentence("unrelated question text", chunk, DefaultHints())
	if got != "Start of semester: 15.09.2025." {
		t.Fatalf("expected hint match, got %q", got)
	}
}

func TestBestSentenceIsDeterministicOnTies(t *testing.T) {
	chunk := "Alpha beta gamma. Alpha beta gamma."
	first := bestSentence("alpha beta", chunk, nil)
	for i := 0; i < 10; i++ {
		if got := bestSentence("alpha beta", chunk, nil); got != first {
			t.Fatalf("nondeterministic best sentence: %q vs %q", got, first)
		}
	}
	if first != "Alpha beta gamma." {
		t.Fatalf("expected first max sentence, got %q", first)
	}
}

func TestScoreSentenceBonuses(t *testing.T) {
	q := "When is the project deadline?"

	dated := scoreSentence(q, "The project deadline is 01.10.2025.")
	yearOnly := scoreSentence(q, "The project deadline is in 2025.")
	bare := scoreSentence(q, "The project deadline was moved.")

	if dated <= yearOnly {
		t.Fatalf("dotted date should outrank bare year: %v <= %v", dated, yearOnly)
	}
	if yearOnly <= bare {
		t.Fatalf("year bonus missing: %v <= %v", yearOnly, bare)
	}
}

func TestScoreSentenceCountsDistinctQuestionTokensOnce(t *testing.T) {
	q := "deadline deadline deadline"
	single := scoreSentence("deadline", "the deadline passed quietly yesterday evening here")
	repeated := scoreSentence(q, "the deadline passed quietly yesterday evening here")
	if single != repeated {
		t.Fatalf("repeated question tokens must not stack: %v != %v", single, repeated)
	}
}

func TestScoreSentenceLengthPenaltyIsCapped(t *testing.T) {
	long := make([]rune, 2000)
	for i := range long {
		long[i] = 'x'
	}
	score := scoreSentence("anything", string(long))
	if score < -0.5-1e-9 {
		t.Fatalf("length penalty must cap at 0.5, got %v", score)
	}
}
