// Package gql is the boundary between live queries and the GraphQL
// executor.
//
// It wraps github.com/graphql-go/graphql with the pieces a live query store
// needs: a plain [Execute] that never panics, detection of the single
// @live operation in a document, the static root-field identifiers of that
// operation, and schema instrumentation that reports every resolved id
// field to a [Collector] carried by the resolver context.
package gql
