package livestore

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// identifierFunc turns a resolved resource into a resource identifier.
type identifierFunc func(typeName, id string) (string, error)

func identifierEnv(typeName, id string) map[string]any {
	return map[string]any{
		"typename": typeName,
		"id":       id,
	}
}

func compileIdentifier(src string) (identifierFunc, error) {
	if src == "" {
		src = DefaultIdentifierExpr
	}
	program, err := expr.Compile(src, expr.Env(identifierEnv("", "")), expr.AsKind(reflect.String))
	if err != nil {
		return nil, fmt.Errorf("could not compile identifierExpr %q: %w", src, err)
	}
	return func(typeName, id string) (string, error) {
		out, err := vm.Run(program, identifierEnv(typeName, id))
		if err != nil {
			return "", fmt.Errorf("identifierExpr failed for %s %s: %w", typeName, id, err)
		}
		s, _ := out.(string)
		return s, nil
	}, nil
}
