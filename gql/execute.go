package gql

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

var ErrNoSchema = errors.New("no schema")

// Parse parses a GraphQL document.
func Parse(query string) (*ast.Document, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return nil, fmt.Errorf("could not parse document: %w", err)
	}
	return doc, nil
}

// Run executes params.  Resolver failures are reported in the result; a
// non-nil error means the executor itself failed and no result was produced.
func Run(params ExecuteParams) (res *Result, err error) {
	if params.Schema == nil {
		return nil, ErrNoSchema
	}
	if params.Document == nil {
		return nil, errors.New("no document")
	}
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	gres := graphql.Execute(graphql.ExecuteParams{
		Schema:        *params.Schema,
		Root:          params.RootValue,
		AST:           params.Document,
		OperationName: params.OperationName,
		Args:          params.Variables,
		Context:       ctx,
	})
	if gres == nil {
		return nil, errors.New("executor returned no result")
	}
	return &Result{
		Data:       gres.Data,
		Errors:     gres.Errors,
		Extensions: gres.Extensions,
	}, nil
}

// Execute is like Run but folds executor failures into the result.
func Execute(params ExecuteParams) *Result {
	res, err := Run(params)
	if err != nil {
		return ErrorResult(err)
	}
	return res
}
