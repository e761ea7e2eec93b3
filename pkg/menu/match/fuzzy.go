package match

import (
	"strings"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

// fuzzyFloor is the minimum token-overlap score for the fallback stage
// to accept a candidate.
const fuzzyFloor = 0.5

// Filler words stripped from the phrase before overlap scoring. The
// drive-thru transcript is full of them ("just the one taco please").
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "just": true, "plain": true,
	"please": true, "of": true, "some": true,
}

// fuzzyBest scores every item by the fraction of phrase words present
// in the item's name or aliases, with half credit when a phrase word is
// only a prefix of a candidate word. Returns the best item above the
// floor, or nil. Strictly-greater comparison keeps the first-declared
// item on ties.
func fuzzyBest(items []*menu.Item, phrase string) *menu.Item {
	words := contentWords(phrase)
	if len(words) == 0 {
		return nil
	}

	var best *menu.Item
	bestScore := 0.0
	for _, it := range items {
		score := overlapScore(words, tokenize(it.Name))
		for _, a := range it.Aliases {
			if s := overlapScore(words, tokenize(a)); s > score {
				score = s
			}
		}
		if score > bestScore {
			bestScore = score
			best = it
		}
	}
	if bestScore < fuzzyFloor {
		return nil
	}
	return best
}

// overlapScore returns the fraction of phrase words found among the
// candidate words. An exact word match scores 1, a prefix match (either
// direction) scores 0.5.
func overlapScore(phraseWords, candWords []string) float64 {
	if len(phraseWords) == 0 || len(candWords) == 0 {
		return 0
	}
	var sum float64
	for _, pw := range phraseWords {
		credit := 0.0
		for _, cw := range candWords {
			switch {
			case pw == cw:
				credit = 1
			case credit < 0.5 && (strings.HasPrefix(cw, pw) || strings.HasPrefix(pw, cw)):
				credit = 0.5
			}
			if credit == 1 {
				break
			}
		}
		sum += credit
	}
	return sum / float64(len(phraseWords))
}

func contentWords(phrase string) []string {
	var out []string
	for _, tok := range tokenize(phrase) {
		if !fillerWords[tok] {
			out = append(out, tok)
		}
	}
	return out
}
