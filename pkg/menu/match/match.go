// Package match resolves free-form spoken phrases to catalog items.
//
// Resolution is a cascade of four stages, each tried only when the
// previous one found nothing:
//
//  1. exact name match (case-insensitive, whitespace-normalized)
//  2. alias match against the catalog's spoken-variant index
//  3. term-weighted vector similarity (cosine over TF-IDF vectors)
//  4. token-overlap fuzzy scoring
//
// The Matcher is built once from a menu and is immutable afterwards, so
// a single instance can serve every conversation without locking.
package match

import (
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

// DefaultThreshold is the cosine-similarity acceptance floor for the
// vector stage. Below it the phrase falls through to fuzzy matching.
// Raising it trades recall for precision: a false positive misbills the
// customer, a false negative merely tries the next stage.
const DefaultThreshold = 0.42

// Result is the outcome of resolving one phrase. It is transient:
// produced per call, never stored.
type Result struct {
	// Phrase is the original input, preserved for error reporting.
	Phrase string
	// Item is the resolved catalog entry, nil when nothing matched.
	Item *menu.Item
	// Stage names the cascade stage that produced the match.
	Stage Stage
}

// Found reports whether the phrase resolved to a catalog item.
func (r Result) Found() bool { return r.Item != nil }

// Stage identifies which cascade stage resolved a phrase.
type Stage string

const (
	StageNone   Stage = ""
	StageExact  Stage = "exact"
	StageAlias  Stage = "alias"
	StageVector Stage = "vector"
	StageFuzzy  Stage = "fuzzy"
)

// Option configures Matcher construction.
type Option func(*Matcher)

// WithThreshold overrides the vector-stage acceptance threshold.
func WithThreshold(t float64) Option {
	return func(m *Matcher) { m.threshold = t }
}

// Matcher resolves phrases against one menu. Safe for concurrent use.
type Matcher struct {
	menu      *menu.Menu
	exact     map[string]*menu.Item
	model     *tfidfModel
	threshold float64
}

// New builds a Matcher for the menu, including the precomputed
// term-weight model over item names, aliases, and categories.
func New(m *menu.Menu, opts ...Option) *Matcher {
	mt := &Matcher{
		menu:      m,
		exact:     make(map[string]*menu.Item, len(m.Items())),
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(mt)
	}
	for _, it := range m.Items() {
		norm := menu.Normalize(it.Name)
		if _, taken := mt.exact[norm]; !taken {
			mt.exact[norm] = it
		}
	}
	mt.model = newTFIDFModel(m.Items())
	return mt
}

// Resolve runs the cascade for one phrase. It never fails: an
// unmatchable phrase yields a Result with a nil Item and the phrase
// preserved for the caller's clarification prompt.
func (mt *Matcher) Resolve(phrase string) Result {
	res := Result{Phrase: phrase}
	norm := menu.Normalize(phrase)
	if norm == "" {
		return res
	}

	if it, ok := mt.exact[norm]; ok {
		res.Item, res.Stage = it, StageExact
		return res
	}

	if sku, ok := mt.menu.AliasSKU(norm); ok {
		res.Item, res.Stage = mt.menu.Item(sku), StageAlias
		return res
	}

	if it, score := mt.model.best(norm); it != nil && score > mt.threshold {
		res.Item, res.Stage = it, StageVector
		return res
	}

	if it := fuzzyBest(mt.menu.Items(), norm); it != nil {
		res.Item, res.Stage = it, StageFuzzy
		return res
	}

	return res
}
