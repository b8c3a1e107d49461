package gql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

const liveDirectiveName = "live"

var (
	ErrNoLiveOperation        = errors.New("no live operation in document")
	ErrMultipleLiveOperations = errors.New("only one live query per document")
)

// LiveDirective declares @live(if: Boolean = true) on queries.  Schemas
// that validate documents should include it next to
// graphql.SpecifiedDirectives.
var LiveDirective = graphql.NewDirective(graphql.DirectiveConfig{
	Name:        liveDirectiveName,
	Description: "Keeps the query result up to date as the data it depends on changes.",
	Locations:   []string{graphql.DirectiveLocationQuery},
	Args: graphql.FieldConfigArgument{
		"if": &graphql.ArgumentConfig{
			Type:         graphql.Boolean,
			DefaultValue: true,
		},
	},
})

// LiveOperation returns the single live operation of doc.
//
// When operationName is set only the operation of that name is
// considered.
func LiveOperation(doc *ast.Document, operationName string, variables map[string]any) (*ast.OperationDefinition, error) {
	if doc == nil {
		return nil, ErrNoLiveOperation
	}
	var live *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if !IsLive(op, variables) {
			continue
		}
		if live != nil {
			return nil, ErrMultipleLiveOperations
		}
		live = op
	}
	if live == nil {
		return nil, ErrNoLiveOperation
	}
	return live, nil
}

// IsLive reports whether op is a query carrying an enabled @live
// directive.  The if argument may be a boolean literal or a variable; a
// variable that is neither provided nor defaulted disables the directive.
func IsLive(op *ast.OperationDefinition, variables map[string]any) bool {
	if op == nil || op.Operation != ast.OperationTypeQuery {
		return false
	}
	for _, dir := range op.Directives {
		if dir.Name == nil || dir.Name.Value != liveDirectiveName {
			continue
		}
		for _, arg := range dir.Arguments {
			if arg.Name == nil || arg.Name.Value != "if" {
				continue
			}
			return truthy(valueOf(arg.Value, op, variables))
		}
		return true
	}
	return false
}

// valueOf resolves literal and variable argument values.  Variables fall
// back to their declared default.
func valueOf(v ast.Value, op *ast.OperationDefinition, variables map[string]any) any {
	switch x := v.(type) {
	case *ast.Variable:
		if x.Name == nil {
			return nil
		}
		if val, ok := variables[x.Name.Value]; ok {
			return val
		}
		for _, vd := range op.VariableDefinitions {
			if vd.Variable == nil || vd.Variable.Name == nil || vd.Variable.Name.Value != x.Name.Value {
				continue
			}
			if vd.DefaultValue != nil {
				return valueOf(vd.DefaultValue, op, nil)
			}
		}
		return nil
	case *ast.BooleanValue:
		return x.Value
	case *ast.StringValue:
		return x.Value
	case *ast.IntValue:
		return x.Value
	case *ast.FloatValue:
		return x.Value
	case *ast.EnumValue:
		return x.Value
	}
	return nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	return true
}
