// Package graph models the activity-graph query language accepted by the
// search backend: actor(id, filter), and(...), or(...), action:N.
//
// Queries are assembled as a small tree of Nodes and serialised once into an
// immutable Expression.
package graph

import (
	"strconv"
	"strings"
)

// Node is a term of the graph query language.
type Node interface {
	write(b *strings.Builder)
}

type actionNode struct {
	code int
}

func (n actionNode) write(b *strings.Builder) {
	b.WriteString("action:")
	b.WriteString(strconv.Itoa(n.code))
}

type actorNode struct {
	id     string
	filter Node
}

func (n actorNode) write(b *strings.Builder) {
	b.WriteString("actor(")
	b.WriteString(n.id)
	b.WriteByte(',')
	n.filter.write(b)
	b.WriteByte(')')
}

type listNode struct {
	op    string
	terms []Node
}

func (n listNode) write(b *strings.Builder) {
	b.WriteString(n.op)
	b.WriteByte('(')
	for i, t := range n.terms {
		if i > 0 {
			b.WriteByte(',')
		}
		t.write(b)
	}
	b.WriteByte(')')
}

// Action matches edges of the given backend action code.
func Action(code int) Node { return actionNode{code: code} }

// Actor matches edges originating at actor id and satisfying filter.
func Actor(id string, filter Node) Node { return actorNode{id: id, filter: filter} }

// And matches when every term matches.
func And(terms ...Node) Node { return listNode{op: "and", terms: terms} }

// Or matches when any term matches.
func Or(terms ...Node) Node { return listNode{op: "or", terms: terms} }

// Expression is a serialised graph query. The zero value is empty.
type Expression struct {
	text string
}

// Compile serialises root into an Expression.
func Compile(root Node) Expression {
	var b strings.Builder
	root.write(&b)
	return Expression{text: b.String()}
}

// String returns the wire form of the expression.
func (e Expression) String() string { return e.text }

// IsEmpty reports whether the expression holds no query.
func (e Expression) IsEmpty() bool { return e.text == "" }
