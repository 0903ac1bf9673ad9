package pocketbase

import (
	"context"
	"net/http"
)

// RecordsService groups the CRUD operations for the client's collection.
type RecordsService struct{ r Requester }

// List returns one page of records. page and perPage overwrite any values the
// caller put in query and are always the last two query parameters.
func (s RecordsService) List(ctx context.Context, query Query, page, perPage int) Result {
	return listRecords(ctx, s.r, query, page, perPage)
}

func listRecords(ctx context.Context, r Requester, query Query, page, perPage int) Result {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	q := query.Clone()
	q["page"] = page
	q["perPage"] = perPage
	return r.execute(ctx, http.MethodGet, r.collectionURL("records", q), nil)
}

// ListAll walks every page of the collection and returns the accumulated
// items. It stops at the first non-2xx result, which is returned together
// with whatever was collected so far.
func (s RecordsService) ListAll(ctx context.Context, query Query, perPage int) ([]map[string]any, Result) {
	return listAllRecords(ctx, s.r, query, perPage)
}

func listAllRecords(ctx context.Context, r Requester, query Query, perPage int) ([]map[string]any, Result) {
	var (
		items []map[string]any
		last  Result
	)
	for page := 1; ; page++ {
		last = listRecords(ctx, r, query, page, perPage)
		if !last.OK() {
			return items, last
		}
		var list RecordList
		if err := last.Decode(&list); err != nil {
			return items, last
		}
		items = append(items, list.Items...)
		if len(list.Items) == 0 || list.TotalPages <= page {
			return items, last
		}
	}
}

// Get fetches a single record. A missing id surfaces as the API's 404.
func (s RecordsService) Get(ctx context.Context, id string, query Query) Result {
	return getRecord(ctx, s.r, id, query)
}

func getRecord(ctx context.Context, r Requester, id string, query Query) Result {
	return r.execute(ctx, http.MethodGet, r.collectionURL(pathJoin("records", id), query), nil)
}

// Create posts data verbatim as a new record.
func (s RecordsService) Create(ctx context.Context, data any) Result {
	return createRecord(ctx, s.r, data)
}

func createRecord(ctx context.Context, r Requester, data any) Result {
	return r.execute(ctx, http.MethodPost, r.collectionURL("records", nil), data)
}

// Update patches the record with the given id.
func (s RecordsService) Update(ctx context.Context, id string, data any) Result {
	return updateRecord(ctx, s.r, id, data)
}

func updateRecord(ctx context.Context, r Requester, id string, data any) Result {
	return r.execute(ctx, http.MethodPatch, r.collectionURL(pathJoin("records", id), nil), data)
}

// Delete removes the record with the given id.
func (s RecordsService) Delete(ctx context.Context, id string) Result {
	return deleteRecord(ctx, s.r, id)
}

func deleteRecord(ctx context.Context, r Requester, id string) Result {
	return r.execute(ctx, http.MethodDelete, r.collectionURL(pathJoin("records", id), nil), nil)
}
