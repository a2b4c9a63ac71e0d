package qfilter

import (
	"context"
	"log/slog"
)

// GenericErrorMessage is what callers see for any failed query; the cause is
// only logged.
const GenericErrorMessage = "An error occurred while processing the query"

// Response is the envelope returned by Service.List.
type Response[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Records []T    `json:"records"`
}

// Service ties a schema, its defaults and a store together behind one list
// operation.
type Service[T any] struct {
	schema   *Schema
	defaults PageDefaults
	store    Store[T]
	log      *slog.Logger
}

// NewService builds a Service. A nil logger means slog.Default().
func NewService[T any](s *Schema, defaults PageDefaults, store Store[T], log *slog.Logger) *Service[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Service[T]{schema: s, defaults: defaults, store: store, log: log}
}

// Schema returns the schema queries are compiled against.
func (s *Service[T]) Schema() *Schema { return s.schema }

// Parse compiles a query string with the service's schema and defaults.
func (s *Service[T]) Parse(query string) (*Filter, error) {
	return Parse(query, s.schema, s.defaults)
}

// Refinement adjusts a parsed filter before it reaches the store.
type Refinement func(*Filter) (*Filter, error)

// List parses query, applies the refinements in order, runs the result
// against the store and wraps the outcome. Every error is logged and
// reported as GenericErrorMessage.
func (s *Service[T]) List(ctx context.Context, query string, refine ...Refinement) Response[T] {
	s.log.DebugContext(ctx, "query received", "schema", s.schema.Name(), "query", query)

	f, err := s.Parse(query)
	for _, r := range refine {
		if err != nil {
			break
		}
		f, err = r(f)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "query could not be parsed", "schema", s.schema.Name(), "kind", KindOf(err).String())
		return Response[T]{Success: false, Error: GenericErrorMessage, Records: []T{}}
	}

	records, err := s.store.Find(ctx, f)
	if err != nil {
		s.log.ErrorContext(ctx, "query could not be executed", "schema", s.schema.Name(), "error", err)
		return Response[T]{Success: false, Error: GenericErrorMessage, Records: []T{}}
	}
	if records == nil {
		records = []T{}
	}

	s.log.DebugContext(ctx, "query served", "schema", s.schema.Name(), "count", len(records),
		"page", f.Page.Number, "size", f.Page.Size)
	return Response[T]{Success: true, Records: records}
}
