package entities

import (
	"strings"
	"unicode"
)

// LabelPlace tags a token run that looks like a place name.
const LabelPlace = "PLACE"

// Tag is one labelled token run produced by a tagger.
type Tag struct {
	Label string
	Text  string
}

// Tagger extracts labelled entities from free text. Implementations may
// wrap a real NLP tagger; the pipeline only consumes tags labelled
// LabelPlace, first one wins.
type Tagger interface {
	Tags(text string) []Tag
}

// HeuristicTagger is a dependency-free Tagger that treats runs of
// capitalized words as candidate place names. It is deliberately eager;
// downstream resolution decides whether a candidate is actually a place.
type HeuristicTagger struct {
	// Skip lists capitalized words that are never place names on their
	// own (honorifics, weekdays, common headline words). Defaults are
	// used when nil.
	Skip map[string]struct{}
}

// NewHeuristicTagger returns a tagger with the default skip list.
func NewHeuristicTagger() *HeuristicTagger {
	return &HeuristicTagger{Skip: defaultSkip()}
}

// Tags returns capitalized word runs labelled as places, in order of
// appearance. Runs made up entirely of skip-listed words are dropped.
func (h *HeuristicTagger) Tags(text string) []Tag {
	skip := h.Skip
	if skip == nil {
		skip = defaultSkip()
	}

	var tags []Tag
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		keep := false
		for _, w := range run {
			if _, skipped := skip[w]; !skipped {
				keep = true
				break
			}
		}
		if keep {
			tags = append(tags, Tag{Label: LabelPlace, Text: strings.Join(run, " ")})
		}
		run = nil
	}

	for _, word := range strings.FieldsFunc(text, isSeparator) {
		if isCapitalized(word) {
			run = append(run, word)
			continue
		}
		flush()
	}
	flush()
	return tags
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && r != '\''
}

func isCapitalized(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	// All-caps acronyms are rarely place names in headlines.
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func defaultSkip() map[string]struct{} {
	words := []string{
		"The", "A", "An", "In", "On", "At", "Of", "For", "With", "After",
		"Before", "Over", "Under", "Near", "From", "Into", "Amid",
		"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
		"January", "February", "March", "April", "May", "June", "July",
		"August", "September", "October", "November", "December",
		"Police", "Cops", "Court", "Man", "Woman", "Two", "Three", "Four",
		"Mr", "Mrs", "Ms", "Dr", "Shri", "Smt",
		"News", "Breaking", "Update", "Live", "Watch", "Video", "Report",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
