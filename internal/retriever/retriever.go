// Package retriever implements the Hybrid Retriever (spec §4.3):
// dense + sparse search per collection, fused with Reciprocal Rank
// Fusion, merged and deduplicated across collections. Grounded on
// original_source/Backend/services/langchain_retriever.py's
// HybridRetriever.
package retriever

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/index"
)

const rrfK = 60

// Embedder is the subset of the Embedder this retriever depends on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the subset of the Index Store this retriever depends on.
type Store interface {
	Collections() map[string]*index.Collection
}

// Retriever is the Hybrid Retriever. It is stateless over its
// collaborators (Store, Embedder), both of which are themselves
// safely-reloadable singletons, so a Retriever instance needs no
// locking of its own.
type Retriever struct {
	store    Store
	embedder Embedder
}

// New constructs a Retriever over the given Index Store and Embedder.
func New(store Store, emb Embedder) *Retriever {
	return &Retriever{store: store, embedder: emb}
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(query string) []string {
	return tokenPattern.FindAllString(strings.ToLower(query), -1)
}

// Retrieve implements the public contract of spec §4.3: an ordered
// sequence of (Document, fused_score) of length at most k.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]document.Scored, error) {
	if query == "" || k <= 0 {
		return nil, nil
	}

	collections := r.store.Collections()
	if len(collections) == 0 {
		return nil, nil
	}

	queryVector, embedErr := r.embedder.Embed(ctx, query)
	queryTerms := tokenize(query)

	results := make([]collectionResult, len(collections))
	keys := make([]string, 0, len(collections))
	for key := range collections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		c := collections[key]
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			hits, blocked := r.retrieveCollection(c, queryVector, embedErr, queryTerms, k)
			results[i] = collectionResult{key: key, hits: hits, blocked: blocked}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeAcrossCollections(results)
	if len(merged) > k {
		merged = merged[:k]
	}
	if len(merged) == 0 && embedErr != nil {
		for _, res := range results {
			if res.blocked {
				return nil, embedErr
			}
		}
	}
	return merged, nil
}

// collectionResult is one collection's fused top-k, tagged with its
// key so callers can attribute results after concurrent fan-out.
// blocked marks a collection that depends on dense search, has no
// sparse path to fall back on, and got no embedding for the query: it
// contributed nothing not because the corpus had no match, but because
// the embedder was unavailable (spec §8 "Degraded startup").
type collectionResult struct {
	key     string
	hits    []rrfCandidate
	blocked bool
}

func (r *Retriever) retrieveCollection(c *index.Collection, queryVector []float32, embedErr error, queryTerms []string, k int) ([]rrfCandidate, bool) {
	if !c.Usable() {
		return nil, false
	}

	var denseList []rankedEntry
	if c.Dense != nil && embedErr == nil {
		denseList = denseSearch(c, queryVector, k)
	}
	blocked := c.Dense != nil && c.Sparse == nil && embedErr != nil

	var sparseList []rankedEntry
	if c.Sparse != nil && len(queryTerms) > 0 {
		sparseList = sparseSearch(c, queryTerms, k)
	}

	fused := fuse(c, denseList, sparseList)
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused, blocked
}

// rankedEntry is one path's ranked hit: a corpus position plus its
// 1-based rank within that path's own top-k list.
type rankedEntry struct {
	corpusIndex int
	rank        int // 1-based
}

func denseSearch(c *index.Collection, queryVector []float32, k int) []rankedEntry {
	hits := c.Dense.Search(queryVector, k)
	out := make([]rankedEntry, 0, len(hits))
	for rank, h := range hits {
		if h.Index < 0 || h.Index >= len(c.Documents) {
			continue // drop invalid indices (§4.3)
		}
		out = append(out, rankedEntry{corpusIndex: h.Index, rank: rank + 1})
	}
	return out
}

// scoredCandidate is a corpus document paired with its raw sparse
// score, before the ranked list discards the magnitude.
type scoredCandidate struct {
	index int
	score float64
}

func sparseSearch(c *index.Collection, queryTerms []string, k int) []rankedEntry {
	scores := c.Sparse.Scores(queryTerms)

	positive := make([]scoredCandidate, 0, len(scores))
	for i, s := range scores {
		if s > 0 && i < len(c.Documents) {
			positive = append(positive, scoredCandidate{index: i, score: s})
		}
	}
	sort.Slice(positive, func(i, j int) bool {
		if positive[i].score != positive[j].score {
			return positive[i].score > positive[j].score
		}
		return positive[i].index < positive[j].index
	})
	if len(positive) > k {
		positive = positive[:k]
	}
	// Min-max normalize the returned set into [0,1] (spec §4.3.2.b).
	// Fusion below only consumes rank, not magnitude, so this has no
	// effect on final ordering; it still runs so the sparse path's
	// scores honor the documented contract.
	minMaxNormalize(positive)

	out := make([]rankedEntry, len(positive))
	for i, p := range positive {
		out[i] = rankedEntry{corpusIndex: p.index, rank: i + 1}
	}
	return out
}

// minMaxNormalize rescales scores in place into [0,1] within the given
// set. When every score is equal (including the single-element case),
// it sets them all to 1 rather than dividing by a zero spread.
func minMaxNormalize(items []scoredCandidate) {
	if len(items) == 0 {
		return
	}
	min, max := items[0].score, items[0].score
	for _, it := range items[1:] {
		if it.score < min {
			min = it.score
		}
		if it.score > max {
			max = it.score
		}
	}
	spread := max - min
	for i := range items {
		if spread == 0 {
			items[i].score = 1
			continue
		}
		items[i].score = (items[i].score - min) / spread
	}
}

// rrfCandidate is a fused hit plus the tie-break signal RRF computed
// to rank it: how many of the collection's paths surfaced it, and
// where it landed in the dense list (0 if it never did). Both survive
// past fuse so mergeAcrossCollections can apply the same tie-break
// rule across collections, not just within one.
type rrfCandidate struct {
	doc       document.Scored
	lists     int
	denseRank int // 0 = not present in dense list
}

// fuse combines the dense and sparse ranked lists for one collection
// with Reciprocal Rank Fusion, K=60 (spec §4.3).
func fuse(c *index.Collection, lists ...[]rankedEntry) []rrfCandidate {
	type accum struct {
		score     float64
		lists     int
		denseRank int // 0 = not present in dense list
	}
	byIndex := map[int]*accum{}

	for listNum, list := range lists {
		for _, entry := range list {
			a, ok := byIndex[entry.corpusIndex]
			if !ok {
				a = &accum{}
				byIndex[entry.corpusIndex] = a
			}
			a.score += 1.0 / float64(rrfK+entry.rank)
			a.lists++
			if listNum == 0 { // dense is always lists[0] by convention
				a.denseRank = entry.rank
			}
		}
	}

	type candidate struct {
		index int
		accum *accum
	}
	candidates := make([]candidate, 0, len(byIndex))
	for idx, a := range byIndex {
		candidates = append(candidates, candidate{index: idx, accum: a})
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.accum.score != cj.accum.score {
			return ci.accum.score > cj.accum.score
		}
		if ci.accum.lists != cj.accum.lists {
			return ci.accum.lists > cj.accum.lists
		}
		di, dj := denseRankOrMax(ci.accum.denseRank), denseRankOrMax(cj.accum.denseRank)
		if di != dj {
			return di < dj
		}
		return documentKey(c, ci.index) < documentKey(c, cj.index)
	})

	out := make([]rrfCandidate, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, rrfCandidate{
			doc: document.Scored{
				Document: c.Documents[cand.index],
				Score:    cand.accum.score,
			},
			lists:     cand.accum.lists,
			denseRank: cand.accum.denseRank,
		})
	}
	return out
}

func denseRankOrMax(rank int) int {
	if rank == 0 {
		return int(^uint(0) >> 1) // treat "never in dense list" as worst rank
	}
	return rank
}

func documentKey(c *index.Collection, idx int) string {
	return c.Documents[idx].Key()
}

// mergeEntry accumulates a document's combined RRF score plus the
// same tie-break signals fuse computes per-collection, carried across
// every collection the document surfaced in: lists summed, dense rank
// kept at its best (lowest) value seen.
type mergeEntry struct {
	doc           document.Scored
	lists         int
	bestDenseRank int
}

// mergeAcrossCollections concatenates per-collection results and
// deduplicates by document identity, accumulating RRF score across
// every collection a document surfaces in. The worked example in
// spec.md §8 ("acts and bills each returning the same top document at
// rank 1 of dense and rank 1 of sparse" yields an RRF score of
// `4/61`) is only reachable by summing the two collections'
// contributions (2/61 each); this is taken as authoritative over the
// looser prose elsewhere describing "retaining the maximum" score,
// which only disambiguates ties when neither contributes new rank
// information.
//
// Ties are broken the same way fuse breaks them within a collection:
// score, then how many lists (here: collection+path combinations)
// surfaced the document, then its best dense rank, then identity key.
func mergeAcrossCollections(results []collectionResult) []document.Scored {
	best := map[string]*mergeEntry{}
	order := []string{}
	for _, r := range results {
		for _, hit := range r.hits {
			key := hit.doc.Document.IdentityKey()
			entry, ok := best[key]
			if !ok {
				entry = &mergeEntry{
					doc:           hit.doc,
					lists:         hit.lists,
					bestDenseRank: denseRankOrMax(hit.denseRank),
				}
				best[key] = entry
				order = append(order, key)
				continue
			}
			entry.doc.Score += hit.doc.Score
			entry.lists += hit.lists
			if dr := denseRankOrMax(hit.denseRank); dr < entry.bestDenseRank {
				entry.bestDenseRank = dr
			}
		}
	}

	out := make([]document.Scored, 0, len(order))
	for _, key := range order {
		out = append(out, best[key].doc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := best[out[i].Document.IdentityKey()], best[out[j].Document.IdentityKey()]
		if ei.doc.Score != ej.doc.Score {
			return ei.doc.Score > ej.doc.Score
		}
		if ei.lists != ej.lists {
			return ei.lists > ej.lists
		}
		if ei.bestDenseRank != ej.bestDenseRank {
			return ei.bestDenseRank < ej.bestDenseRank
		}
		return out[i].Document.IdentityKey() < out[j].Document.IdentityKey()
	})
	return out
}
