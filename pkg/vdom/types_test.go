package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElement_SkipsNilChildren(t *testing.T) {
	n := NewElement("div", Props{"key": "root"}, NewText("a"), nil, NewText("b"))
	assert.True(t, n.IsElement())
	assert.Equal(t, "root", n.Key)
	require.Len(t, n.Kids, 2)
	assert.Equal(t, "b", n.Kids[1].Text)
}

func TestVNode_AttrKeysSorted(t *testing.T) {
	n := NewElement("div", Props{"style": "x", "class": "c", "id": "i"})
	assert.Equal(t, []string{"class", "id", "style"}, n.AttrKeys())

	v, ok := n.Attr("class")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	_, ok = NewText("t").Attr("class")
	assert.False(t, ok)
}

func TestVNode_Find(t *testing.T) {
	tree := NewElement("div", nil,
		NewElement("span", Props{"key": "a"}),
		NewFragment(NewElement("span", Props{"key": "b"}, NewText("deep"))),
	)
	b := tree.Find("b")
	require.NotNil(t, b)
	assert.Equal(t, "deep", b.Kids[0].Text)
	assert.Nil(t, tree.Find("missing"))
	assert.Nil(t, tree.Find(""))
}

func TestVNode_Walk(t *testing.T) {
	tree := NewElement("div", nil,
		NewElement("p", nil, NewText("skipped")),
		NewText("seen"),
	)
	var texts []string
	tree.Walk(func(n *VNode) bool {
		if n.IsText() {
			texts = append(texts, n.Text)
		}
		return n.Tag != "p"
	})
	assert.Equal(t, []string{"seen"}, texts)
}
