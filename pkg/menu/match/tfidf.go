package match

import (
	"math"
	"strings"
	"unicode"

	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
)

// tfidfModel is a term-weighted vector space over the catalog. Each
// item becomes one document (name + aliases + category); terms rare
// across the catalog weigh more than common ones. Built once at Matcher
// construction and read-only afterwards.
type tfidfModel struct {
	items []*menu.Item
	idf   map[string]float64
	// docs[i] is the L2-normalized weight vector for items[i], keyed by
	// term. Sparse maps, never mutated after build.
	docs []map[string]float64
}

func newTFIDFModel(items []*menu.Item) *tfidfModel {
	m := &tfidfModel{
		items: items,
		idf:   make(map[string]float64),
	}

	counts := make([]map[string]int, len(items))
	df := make(map[string]int)
	for i, it := range items {
		tf := make(map[string]int)
		for _, tok := range tokenize(it.Name) {
			tf[tok]++
		}
		for _, a := range it.Aliases {
			for _, tok := range tokenize(a) {
				tf[tok]++
			}
		}
		for _, tok := range tokenize(it.Category) {
			tf[tok]++
		}
		counts[i] = tf
		for tok := range tf {
			df[tok]++
		}
	}

	// Smoothed idf: ln((1+N)/(1+df)) + 1, so a term in every document
	// still carries weight 1 rather than vanishing.
	n := float64(len(items))
	for tok, d := range df {
		m.idf[tok] = math.Log((1+n)/(1+float64(d))) + 1
	}

	m.docs = make([]map[string]float64, len(items))
	for i, tf := range counts {
		vec := make(map[string]float64, len(tf))
		var norm float64
		for tok, c := range tf {
			w := float64(c) * m.idf[tok]
			vec[tok] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for tok := range vec {
				vec[tok] /= norm
			}
		}
		m.docs[i] = vec
	}
	return m
}

// best returns the item with the highest cosine similarity to the
// phrase, along with that similarity. Ties keep the first-declared
// item. Terms the catalog has never seen contribute nothing; a phrase
// of only unknown terms scores zero everywhere.
func (m *tfidfModel) best(phrase string) (*menu.Item, float64) {
	query := make(map[string]float64)
	var norm float64
	for _, tok := range tokenize(phrase) {
		if w, ok := m.idf[tok]; ok {
			query[tok] += w
		}
	}
	if len(query) == 0 {
		return nil, 0
	}
	for _, w := range query {
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for tok := range query {
		query[tok] /= norm
	}

	var bestItem *menu.Item
	bestScore := 0.0
	for i, doc := range m.docs {
		var dot float64
		for tok, qw := range query {
			if dw, ok := doc[tok]; ok {
				dot += qw * dw
			}
		}
		if dot > bestScore {
			bestScore = dot
			bestItem = m.items[i]
		}
	}
	return bestItem, bestScore
}

// tokenize splits a phrase into lowercase alphanumeric runs.
func tokenize(s string) []string {
	var toks []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			toks = append(toks, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return toks
}
