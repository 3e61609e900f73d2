package ktree_test

import (
	"reflect"
	"testing"

	"github.com/connglli/dxpk/ktree"
)

func TestWalkPreOrder(t *testing.T) {
	t.Parallel()

	root := ktree.New(0)
	a := root.AddChild(1)
	a.AddChild(2)
	root.AddChild(3)

	var got [][2]int
	root.Walk(func(value, childCount int) {
		got = append(got, [2]int{value, childCount})
	})

	want := [][2]int{{0, 2}, {1, 1}, {2, 0}, {3, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	root := ktree.New(0)
	a := root.AddChild(1)
	a.AddChild(2)
	root.AddChild(3)

	tokens := ktree.EncodeTokens(root)
	wantTokens := []string{"0,2", "1,1", "2,0", "3,0"}
	if !reflect.DeepEqual(tokens, wantTokens) {
		t.Fatalf("EncodeTokens() = %v, want %v", tokens, wantTokens)
	}

	pairs := make([][2]int, len(wantTokens))
	for i, p := range [][2]int{{0, 2}, {1, 1}, {2, 0}, {3, 0}} {
		pairs[i] = p
	}

	decoded := ktree.DecodeTokens(pairs)

	var redone [][2]int
	decoded.Walk(func(value, childCount int) {
		redone = append(redone, [2]int{value, childCount})
	})
	var original [][2]int
	root.Walk(func(value, childCount int) {
		original = append(original, [2]int{value, childCount})
	})
	if !reflect.DeepEqual(redone, original) {
		t.Errorf("round trip = %v, want %v", redone, original)
	}
}

func TestEncodeSingleNode(t *testing.T) {
	t.Parallel()

	root := ktree.New(0)
	if got, want := ktree.Encode(root), "0,0;"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}
