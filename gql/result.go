package gql

import (
	"context"
	"iter"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
)

// Result is one execution result.  IsLive marks results produced by a live
// query; it is not serialized.
type Result struct {
	Data       any                        `json:"data,omitempty"`
	Errors     []gqlerrors.FormattedError `json:"errors,omitempty"`
	Extensions map[string]any             `json:"extensions,omitempty"`
	IsLive     bool                       `json:"-"`
}

// ExecuteParams are the inputs of one execution.
type ExecuteParams struct {
	Schema        *graphql.Schema
	Document      *ast.Document
	OperationName string
	Variables     map[string]any
	RootValue     any
	Context       context.Context
}

// Execution is either a single Result or a Stream of them.  Exactly one
// field is set.
type Execution struct {
	Result *Result
	Stream iter.Seq2[*Result, error]
}

// ErrorResult returns a result carrying only err.
func ErrorResult(err error) *Result {
	return &Result{Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)}}
}
