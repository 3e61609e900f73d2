package ktree

import (
	"strconv"
	"strings"
)

// EncodeTokens renders a pre-order stream of "value,childCount" tokens, one
// per node, in the order the DXPK event line expects them (before the
// trailing ";" each token carries in the wire format).
func EncodeTokens(t *Tree) []string {
	var tokens []string
	t.Walk(func(value, childCount int) {
		tokens = append(tokens, strconv.Itoa(value)+","+strconv.Itoa(childCount))
	})
	return tokens
}

// Encode renders the tree as the DXPK wire substring: "v,k;" per node.
func Encode(t *Tree) string {
	var b strings.Builder
	for _, tok := range EncodeTokens(t) {
		b.WriteString(tok)
		b.WriteByte(';')
	}
	return b.String()
}

// decodeFrame tracks how many more children a pushed node still expects.
type decodeFrame struct {
	node      *Tree
	remaining int
}

// DecodeTokens reconstructs a tree from a pre-order "(value, childCount)"
// stream using a descent stack: pushing a frame whenever a node has
// children, decrementing the top frame when a child completes, and
// popping frames once their count reaches zero. Decoding is complete once
// the stack empties after consuming every token.
func DecodeTokens(tokens [][2]int) *Tree {
	if len(tokens) == 0 {
		return nil
	}

	var root *Tree
	var stack []*decodeFrame

	for _, tok := range tokens {
		value, childCount := tok[0], tok[1]
		node := New(value)

		if len(stack) == 0 {
			root = node
		} else {
			top := stack[len(stack)-1]
			top.node.AddChildTree(node)
			top.remaining--
		}

		if childCount > 0 {
			stack = append(stack, &decodeFrame{node: node, remaining: childCount})
		}

		for len(stack) > 0 && stack[len(stack)-1].remaining == 0 {
			stack = stack[:len(stack)-1]
		}
	}

	return root
}
