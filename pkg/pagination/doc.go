// Package pagination fetches every record of an offset-paginated resource.
//
// Pages are requested one at a time with limit/offset query parameters. A
// page shorter than the page size ends the resource; otherwise the offset
// advances by exactly the page size. A resource whose size is a multiple of
// the page size costs one extra, empty request.
//
// Example usage:
//
//	src := ckan.NewSource(httpClient, ckan.DefaultBaseURL)
//	fetcher, err := pagination.New(src, pagination.DefaultConfig())
//	table, err := fetcher.FetchAll(ctx, "d304108a-06c1-462f-a144-981dd0109900")
//	err = export.WriteCSVColumns(path, table.Header(), table.Records)
//
// Failures are never retried and no partial result is returned: the first
// failing page aborts the resource with an error naming it.
package pagination
