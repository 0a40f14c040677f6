// Package search implements the BFS substring/term scorer over the node
// hierarchy: no inverted index, no analyzer, just a breadth-first walk from
// the root scoring each visited node against a query.
package search

import (
	"sort"
	"strings"

	"github.com/willowgraph/willow/internal/model"
	"github.com/willowgraph/willow/internal/willowlog"
)

// Result is one scored hit.
type Result struct {
	NodeID model.NodeId `json:"node_id"`
	Field  string       `json:"field"`
	Score  float64      `json:"score"`
	Depth  int          `json:"depth"`
}

const (
	weightContent  = 1.0
	weightMetadata = 0.5
	weightNodeType = 0.3
)

// textScore compares lowercased text against a lowercased query.
//
//   - whole-query substring hit -> 1.0
//   - all terms present (len(terms) > 1) -> 0.6
//   - some but not all terms present -> 0.3 * matched/total
//   - no terms present -> 0.0
func textScore(text, query string) float64 {
	text = strings.ToLower(text)
	query = strings.ToLower(query)
	if strings.Contains(text, query) {
		return 1.0
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return 0.0
	}
	matched := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			matched++
		}
	}
	switch {
	case matched == len(terms) && len(terms) > 1:
		return 0.6
	case matched > 0:
		return 0.3 * float64(matched) / float64(len(terms))
	default:
		return 0.0
	}
}

// bestMatch returns the highest-weighted field match for a node against
// query, or ok=false if nothing scored above zero.
func bestMatch(n *model.Node, query string) (field string, score float64, ok bool) {
	if s := weightContent * textScore(n.Content, query); s > score {
		field, score, ok = "content", s, true
	}
	if s := weightNodeType * textScore(string(n.NodeType), query); s > score {
		field, score, ok = "node_type", s, true
	}
	for _, k := range sortedMetadataKeys(n.Metadata) {
		if s := weightMetadata * textScore(n.Metadata[k], query); s > score {
			field, score, ok = "metadata."+k, s, true
		}
	}
	return field, score, ok
}

func sortedMetadataKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Nodes performs a BFS from g.RootID through children, scoring every
// reachable node against query and returning the top maxResults by
// descending score. Nodes present in the map but unreachable from the root
// never appear: an orphan subtree is invisible to search by construction.
func Nodes(g *model.Graph, query string, maxResults int) []Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var results []Result
	visited := map[model.NodeId]bool{}
	type queued struct {
		id    model.NodeId
		depth int
	}
	queue := []queued{{g.RootID, 0}}
	visited[g.RootID] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n, ok := g.Nodes[cur.id]
		if !ok {
			continue
		}
		if field, score, matched := bestMatch(n, query); matched && score > 0 {
			results = append(results, Result{NodeID: n.ID, Field: field, Score: score, Depth: cur.depth})
		}
		for _, childID := range n.Children {
			if !visited[childID] {
				visited[childID] = true
				queue = append(queue, queued{childID, cur.depth + 1})
			}
		}
	}

	// Stable sort preserves BFS visitation order as the tie-break; total_cmp
	// semantics aren't needed since neither field ever produces NaN.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	willowlog.Debug("search", "query complete", "query", query, "hits", len(results))
	return results
}
