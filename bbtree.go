package pacs

// bbNode is either a leaf holding a wall or an inner node with two children.
type bbNode struct {
	wall   *Wall
	bb     BB
	parent *bbNode

	a, b *bbNode
}

func (node *bbNode) isLeaf() bool {
	return node.wall != nil
}

// BBTree is an incremental AABB tree over the terrain walls. Inserts descend
// toward the child whose merged area grows the least.
type BBTree struct {
	root   *bbNode
	leaves int

	pooledNodes *bbNode
}

func NewBBTree() *BBTree {
	return &BBTree{}
}

func (tree *BBTree) Count() int {
	return tree.leaves
}

func (tree *BBTree) Insert(wall *Wall) {
	leaf := tree.nodeFromPool()
	leaf.wall = wall
	leaf.bb = wall.BB()
	tree.root = tree.subtreeInsert(tree.root, leaf)
	tree.leaves++
}

func (tree *BBTree) subtreeInsert(subtree, leaf *bbNode) *bbNode {
	if subtree == nil {
		return leaf
	}
	if subtree.isLeaf() {
		return tree.newNode(leaf, subtree)
	}

	costA := subtree.b.bb.Area() + subtree.a.bb.MergedArea(leaf.bb)
	costB := subtree.a.bb.Area() + subtree.b.bb.MergedArea(leaf.bb)

	if costA == costB {
		costA = subtree.a.bb.Proximity(leaf.bb)
		costB = subtree.b.bb.Proximity(leaf.bb)
	}

	if costB < costA {
		nodeSetB(subtree, tree.subtreeInsert(subtree.b, leaf))
	} else {
		nodeSetA(subtree, tree.subtreeInsert(subtree.a, leaf))
	}

	subtree.bb = subtree.bb.Merge(leaf.bb)
	return subtree
}

// Query calls f for every wall whose box intersects bb.
func (tree *BBTree) Query(bb BB, f func(wall *Wall)) {
	if tree.root != nil {
		tree.root.query(bb, f)
	}
}

func (node *bbNode) query(bb BB, f func(wall *Wall)) {
	if !node.bb.Intersects(bb) {
		return
	}
	if node.isLeaf() {
		f(node.wall)
		return
	}
	node.a.query(bb, f)
	node.b.query(bb, f)
}

// Each visits every wall.
func (tree *BBTree) Each(f func(wall *Wall)) {
	var walk func(node *bbNode)
	walk = func(node *bbNode) {
		if node == nil {
			return
		}
		if node.isLeaf() {
			f(node.wall)
			return
		}
		walk(node.a)
		walk(node.b)
	}
	walk(tree.root)
}

func (tree *BBTree) newNode(a, b *bbNode) *bbNode {
	node := tree.nodeFromPool()
	node.bb = a.bb.Merge(b.bb)
	nodeSetA(node, a)
	nodeSetB(node, b)
	return node
}

func nodeSetA(node, value *bbNode) {
	node.a = value
	value.parent = node
}

func nodeSetB(node, value *bbNode) {
	node.b = value
	value.parent = node
}

func (tree *BBTree) nodeFromPool() *bbNode {
	node := tree.pooledNodes
	if node == nil {
		// Pool is exhausted make more
		for i := 0; i < 32; i++ {
			tree.nodeRecycle(&bbNode{})
		}
		node = tree.pooledNodes
	}
	tree.pooledNodes = node.parent
	*node = bbNode{}
	return node
}

func (tree *BBTree) nodeRecycle(node *bbNode) {
	node.parent = tree.pooledNodes
	tree.pooledNodes = node
}
