// Package search answers structural similarity queries over the indexed
// corpus: exact feature-set matches, ordered-subsequence containment, and a
// blended ranking that combines both signals.
package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/BitWhispererSumedh/OperatorTree/feature"
	"github.com/BitWhispererSumedh/OperatorTree/graphstore"
)

const (
	// Equations holding every feature in the query list.
	exactMatchQuery = `
MATCH (eq:Equation)-[:HAS_FTR]->(f:Feature)
WHERE f.id IN $feature_list
WITH eq, collect(f.id) AS matched_features
WHERE ALL(x IN $feature_list WHERE x IN matched_features)
RETURN eq.id AS id`

	// Per-equation count of direct query-feature matches alongside the
	// equation's total feature count.
	someFeaturesQuery = `
MATCH (eq:Equation)-[:HAS_FTR]->(f:Feature)
WHERE f.id IN $feature_list
WITH eq, count(DISTINCT f) AS matched_count
MATCH (eq)-[:HAS_FTR]->(all_f:Feature)
RETURN eq.id AS id, matched_count, count(all_f) AS total_features`

	// Candidate features for subsequence containment: membership of every
	// query label is checked in the store, strict ordering client-side.
	subseqCandidatesQuery = `
MATCH (e:Equation)-[:HAS_FTR]->(f:Feature)
WHERE ALL(item IN $subsequence WHERE item IN f.id)
WITH e, collect(f.id) AS features
RETURN e.id AS id, features`

	// Full feature sets, used to score the subsequence half of the blend.
	allFeaturesQuery = `
MATCH (e:Equation)-[:HAS_FTR]->(f:Feature)
WITH e, collect(f.id) AS features
RETURN e.id AS id, features`
)

// SubseqMatch pairs an equation with the stored features that contain the
// query sequence.
type SubseqMatch struct {
	EquationID string
	Features   [][]string
}

// RankGroup is one score tier of a ranked result. Equations within a group
// are tied; groups are emitted in descending score order.
type RankGroup struct {
	Score     float64
	Equations []string
}

// Engine runs retrieval queries over a connected store session.
type Engine struct {
	session graphstore.Runner
	log     *slog.Logger
}

// NewEngine creates a query engine over an acquired session.
func NewEngine(session graphstore.Runner) (*Engine, error) {
	if session == nil {
		return nil, errors.New("search engine requires a store session")
	}
	return &Engine{session: session, log: slog.Default()}, nil
}

// ExactMatch returns the ids of all equations whose stored feature set
// contains every path in the query list. An empty query returns no
// results.
func (e *Engine) ExactMatch(ctx context.Context, paths [][]string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	records, err := e.session.Run(ctx, exactMatchQuery, map[string]any{
		"feature_list": pathsParam(paths),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, asString(rec["id"]))
	}
	return ids, nil
}

// SubsequenceMatch returns every equation owning a feature that contains
// seq as an ordered subsequence, together with the matching features. An
// empty sequence returns no results.
func (e *Engine) SubsequenceMatch(ctx context.Context, seq []string) ([]SubseqMatch, error) {
	if len(seq) == 0 {
		return nil, nil
	}

	records, err := e.session.Run(ctx, subseqCandidatesQuery, map[string]any{
		"subsequence": labelsParam(seq),
	})
	if err != nil {
		return nil, err
	}

	var matches []SubseqMatch
	for _, rec := range records {
		var matched [][]string
		for _, f := range asStringSlices(rec["features"]) {
			if feature.IsSubsequence(seq, f) {
				matched = append(matched, f)
			}
		}
		if len(matched) > 0 {
			matches = append(matches, SubseqMatch{
				EquationID: asString(rec["id"]),
				Features:   matched,
			})
		}
	}
	return matches, nil
}

// Ranked scores every equation against the query feature list and groups
// the results by score, descending:
//
//	score = 0.5*exact/denom + 0.5*subseq/denom, denom = max(total, k)
//
// where exact counts query paths stored directly as features, subseq counts
// query paths contained as ordered subsequences in some stored feature,
// total is the equation's feature count and k the query length. Ties within
// a group carry no further order.
func (e *Engine) Ranked(ctx context.Context, paths [][]string) ([]RankGroup, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	k := len(paths)
	e.log.Debug("ranked query", slog.Int("features", k))
	scores := make(map[string]float64)

	exact, err := e.session.Run(ctx, someFeaturesQuery, map[string]any{
		"feature_list": pathsParam(paths),
	})
	if err != nil {
		return nil, err
	}
	for _, rec := range exact {
		matched := asInt(rec["matched_count"])
		total := asInt(rec["total_features"])
		if matched == 0 {
			continue
		}
		denom := max(total, int64(k))
		scores[asString(rec["id"])] += 0.5 * float64(matched) / float64(denom)
	}

	all, err := e.session.Run(ctx, allFeaturesQuery, nil)
	if err != nil {
		return nil, err
	}
	for _, rec := range all {
		features := asStringSlices(rec["features"])
		matched := 0
		for _, p := range paths {
			for _, f := range features {
				if feature.IsSubsequence(p, f) {
					matched++
					break
				}
			}
		}
		if matched == 0 {
			continue
		}
		denom := max(int64(len(features)), int64(k))
		scores[asString(rec["id"])] += 0.5 * float64(matched) / float64(denom)
	}

	return groupByScore(scores), nil
}

// groupByScore buckets equations by score and orders the buckets
// descending. Equation ids inside a bucket are sorted only to make output
// reproducible; the tier itself is unordered.
func groupByScore(scores map[string]float64) []RankGroup {
	buckets := make(map[float64][]string)
	for id, score := range scores {
		buckets[score] = append(buckets[score], id)
	}

	groups := make([]RankGroup, 0, len(buckets))
	for score, ids := range buckets {
		sort.Strings(ids)
		groups = append(groups, RankGroup{Score: score, Equations: ids})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Score > groups[j].Score })
	return groups
}

func pathsParam(paths [][]string) []any {
	out := make([]any, len(paths))
	for i, p := range paths {
		out[i] = labelsParam(p)
	}
	return out
}

func labelsParam(labels []string) []any {
	out := make([]any, len(labels))
	for i, l := range labels {
		out[i] = l
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asStringSlices(v any) [][]string {
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([][]string); ok {
			return ss
		}
		return nil
	}
	out := make([][]string, 0, len(items))
	for _, item := range items {
		out = append(out, asStrings(item))
	}
	return out
}

func asStrings(v any) []string {
	if ss, ok := v.([]string); ok {
		return ss
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item))
	}
	return out
}
