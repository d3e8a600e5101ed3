package pyast

// NewNode creates a node of the given kind with no position.
func NewNode(kind Kind) *Node {
	return &Node{Kind: kind}
}

// At returns a node of the given kind positioned at (line, col).
func At(kind Kind, line, col int) *Node {
	return &Node{Kind: kind, Line: line, Col: col}
}

// Link sets the Parent pointer of every node below root.
func Link(root *Node) {
	if root == nil {
		return
	}
	for _, child := range root.Children() {
		child.Parent = root
		Link(child)
	}
}
