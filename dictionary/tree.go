package dictionary

import "github.com/goliatone/go-dynconfig/codec"

// BuildTree links items into a forest using ParentID. Items whose parent is missing from
// items become roots; sibling order follows the input.
func BuildTree(items []Item) []*TreeNode {
	nodes := make([]*TreeNode, len(items))
	for i := range items {
		nodes[i] = &TreeNode{Item: items[i], Children: []*TreeNode{}}
	}

	return codec.BuildTree(nodes,
		func(n *TreeNode) string { return n.ID },
		func(n *TreeNode) (string, bool) {
			return n.ParentID, n.ParentID != "" && n.ParentID != n.ID
		},
		func(parent, child *TreeNode) { parent.Children = append(parent.Children, child) },
	)
}
