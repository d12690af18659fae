package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/sitecms-client/pkg/cms"
)

// withDefaults layers caller params over a resource's baked-in defaults.
func withDefaults(defaults, params *cms.QueryParams) *cms.QueryParams {
	return defaults.Merge(params)
}

// readList fetches a collection envelope.
func readList[T any](ctx context.Context, t *Transport, endpoint string, params *cms.QueryParams, useCache bool) (*cms.ListResponse[T], error) {
	data, err := t.Read(ctx, endpoint, params, useCache)
	if err != nil {
		return nil, err
	}

	var list cms.ListResponse[T]

	err = json.Unmarshal(data, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", endpoint, err)
	}

	return &list, nil
}

// readItems fetches a collection and drops its metadata.
func readItems[T any](ctx context.Context, t *Transport, endpoint string, params *cms.QueryParams, useCache bool) ([]T, error) {
	list, err := readList[T](ctx, t, endpoint, params, useCache)
	if err != nil {
		return nil, err
	}

	return list.Data, nil
}

// readOne fetches a single envelope. A 404 or a null data field yields nil.
func readOne[T any](ctx context.Context, t *Transport, endpoint string, params *cms.QueryParams, useCache bool) (*T, error) {
	data, err := t.Read(ctx, endpoint, params, useCache)
	if err != nil {
		if cms.IsNotFound(err) {
			return nil, nil
		}

		return nil, err
	}

	return decodeOne[T](endpoint, data)
}

func decodeOne[T any](endpoint string, data []byte) (*T, error) {
	var single cms.Response[*T]

	err := json.Unmarshal(data, &single)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", endpoint, err)
	}

	return single.Data, nil
}

// getByRef resolves a ref the way every content collection does: an id reads
// collection/{id}, a slug filters the collection and takes the first match.
func getByRef[T any](ctx context.Context, t *Transport, collection string, ref cms.Ref, populate *cms.Populate) (*T, error) {
	err := ref.Validate()
	if err != nil {
		return nil, err
	}

	params := cms.NewQueryParams().WithPopulate(populate)

	if ref.IsID() {
		return readOne[T](ctx, t, collection+"/"+ref.String(), params, true)
	}

	params = params.WithFilter(cms.Eq("slug", ref.Slug()))

	list, err := readList[T](ctx, t, collection, params, true)
	if err != nil {
		if cms.IsNotFound(err) {
			return nil, nil
		}

		return nil, err
	}

	if len(list.Data) == 0 {
		return nil, nil
	}

	return &list.Data[0], nil
}

// create posts body to collection and decodes the created record.
func create[T any](ctx context.Context, t *Transport, collection string, body any) (*T, error) {
	data, err := t.Post(ctx, collection, body)
	if err != nil {
		return nil, err
	}

	return decodeOne[T](collection, data)
}

// update puts body to collection/{id}.
func update[T any](ctx context.Context, t *Transport, collection string, id int, body any) (*T, error) {
	path := fmt.Sprintf("%s/%d", collection, id)

	data, err := t.Put(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return decodeOne[T](path, data)
}

// remove deletes collection/{id}.
func remove(ctx context.Context, t *Transport, collection string, id int) error {
	_, err := t.Delete(ctx, fmt.Sprintf("%s/%d", collection, id))

	return err
}
