package gql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// RootField is one root-level field selection of an operation with its
// resolved argument values.
type RootField struct {
	Name string
	Args map[string]any
}

// RootFields returns the root-level field selections of op, following
// fragment spreads and inline fragments, in selection order.  Aliased
// selections of one field appear once per selection; introspection fields
// are skipped.
func RootFields(doc *ast.Document, op *ast.OperationDefinition, variables map[string]any) []RootField {
	frags := map[string]*ast.FragmentDefinition{}
	if doc != nil {
		for _, def := range doc.Definitions {
			if fd, ok := def.(*ast.FragmentDefinition); ok && fd.Name != nil {
				frags[fd.Name.Value] = fd
			}
		}
	}
	c := &fieldCollector{
		op:        op,
		variables: variables,
		frags:     frags,
		visited:   map[string]bool{},
	}
	if op != nil {
		c.collect(op.SelectionSet)
	}
	return c.fields
}

type fieldCollector struct {
	op        *ast.OperationDefinition
	variables map[string]any
	frags     map[string]*ast.FragmentDefinition
	visited   map[string]bool
	fields    []RootField
}

func (c *fieldCollector) collect(set *ast.SelectionSet) {
	if set == nil {
		return
	}
	for _, sel := range set.Selections {
		switch x := sel.(type) {
		case *ast.Field:
			if x.Name == nil || strings.HasPrefix(x.Name.Value, "__") {
				continue
			}
			args := make(map[string]any, len(x.Arguments))
			for _, arg := range x.Arguments {
				if arg.Name == nil {
					continue
				}
				args[arg.Name.Value] = valueOf(arg.Value, c.op, c.variables)
			}
			c.fields = append(c.fields, RootField{Name: x.Name.Value, Args: args})
		case *ast.InlineFragment:
			c.collect(x.SelectionSet)
		case *ast.FragmentSpread:
			if x.Name == nil || c.visited[x.Name.Value] {
				continue
			}
			c.visited[x.Name.Value] = true
			if fd, ok := c.frags[x.Name.Value]; ok {
				c.collect(fd.SelectionSet)
			}
		}
	}
}

// StaticIdentifiers returns the identifiers op depends on by construction:
// <Query>.<field> for each root field and <Query>.<field>(<arg>:"<value>")
// for each ID-typed argument given a value.
func StaticIdentifiers(schema *graphql.Schema, doc *ast.Document, op *ast.OperationDefinition, variables map[string]any) []string {
	typeName := "Query"
	var defs graphql.FieldDefinitionMap
	if schema != nil && schema.QueryType() != nil {
		typeName = schema.QueryType().Name()
		defs = schema.QueryType().Fields()
	}
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, f := range RootFields(doc, op, variables) {
		base := typeName + "." + f.Name
		add(base)
		fd := defs[f.Name]
		if fd == nil {
			continue
		}
		for _, arg := range fd.Args {
			if !isIDType(arg.Type) {
				continue
			}
			v, ok := f.Args[arg.Name()]
			if !ok || v == nil {
				continue
			}
			add(fmt.Sprintf("%s(%s:%q)", base, arg.Name(), fmt.Sprint(v)))
		}
	}
	return ids
}

func isIDType(t graphql.Input) bool {
	if nn, ok := t.(*graphql.NonNull); ok {
		return nn.OfType == graphql.ID
	}
	return t == graphql.ID
}
