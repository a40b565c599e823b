package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/addressbook/datastores"
)

type handler[I, O any] = func(context.Context, *I) (*O, error)

// handlerWithErrorHandler calls do with every error returned by handler.
func handlerWithErrorHandler[I, O any](handler handler[I, O], do func(context.Context, error)) handler[I, O] {
	if do == nil {
		return handler
	}

	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err != nil {
			do(ctx, err)
		}
		return o, err
	}
}

func opErrors(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}

// storeError converts the store's sentinel errors to HTTP errors.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ds.ErrObjectNotFound):
		return huma.Error404NotFound("not found", err)
	case errors.Is(err, ds.ErrInvalidValue):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	default:
		return err
	}
}
