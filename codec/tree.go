package codec

import (
	"sort"
	"strings"
)

// KeySeparator splits configuration keys into namespace segments.
const KeySeparator = "."

// Pair is a single flattened configuration entry.
type Pair struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// BuildNestedConfig converts flat dotted pairs into nested maps. Intermediate maps are
// created as needed; a scalar already sitting at a branch position is replaced by a map.
// Single segment keys are assigned at the root.
func BuildNestedConfig(pairs []Pair) map[string]any {
	root := make(map[string]any)

	for _, p := range pairs {
		segments := strings.Split(p.Key, KeySeparator)
		node := root
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = p.Value
	}

	return root
}

// FlattenConfig walks a nested map and returns dotted pairs sorted by key. Slices are
// leaves and are not descended into. prefix, when set, is prepended to every key.
func FlattenConfig(obj map[string]any, prefix string) []Pair {
	var out []Pair
	flattenInto(&out, obj, prefix)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flattenInto(out *[]Pair, obj map[string]any, prefix string) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + KeySeparator + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(out, nested, key)
			continue
		}
		*out = append(*out, Pair{Key: key, Value: v})
	}
}

// BuildTree links nodes into a forest. id returns a node's identifier, parent returns its
// parent identifier (false for none) and adopt appends child to parent. Nodes whose parent
// is unknown become roots. Input order is kept for roots and for children.
//
// The nodes are indexed first and linked in a second walk, so the cost is linear.
func BuildTree[N any, K comparable](nodes []N, id func(N) K, parent func(N) (K, bool), adopt func(parent, child N)) []N {
	index := make(map[K]N, len(nodes))
	for _, n := range nodes {
		index[id(n)] = n
	}

	roots := make([]N, 0)
	for _, n := range nodes {
		pid, ok := parent(n)
		if !ok {
			roots = append(roots, n)
			continue
		}
		p, found := index[pid]
		if !found || pid == id(n) {
			roots = append(roots, n)
			continue
		}
		adopt(p, n)
	}

	return roots
}
