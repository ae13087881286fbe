package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

// cohortParams are the query parameters shared by the synopsis endpoints.
type cohortParams struct {
	ContentType string
	Category    string
	Kind        topics.Kind
	IDs         []int
}

func parseCohort(q url.Values) (cohortParams, error) {
	var p cohortParams
	var err error

	if p.ContentType, err = dataset.ParseContentType(q.Get("content_type")); err != nil {
		return p, err
	}
	if p.Category, err = dataset.ParseCategory(q.Get("category")); err != nil {
		return p, err
	}
	if p.Kind, err = topics.ParseKind(q.Get("view")); err != nil {
		return p, err
	}
	if p.IDs, err = parseIDs(q, "ids", "id"); err != nil {
		return p, err
	}
	return p, nil
}

// parseIDs reads integer ids from repeated and comma-separated parameters.
func parseIDs(q url.Values, keys ...string) ([]int, error) {
	var ids []int
	for _, key := range keys {
		for _, raw := range q[key] {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := strconv.Atoi(part)
				if err != nil {
					return nil, fmt.Errorf("%s %q: %w", key, part, internalerr.ErrInvalidInput)
				}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// contentTypeOr parses content_type, falling back to def when absent.
func contentTypeOr(q url.Values, def string) (string, error) {
	if q.Get("content_type") == "" {
		return def, nil
	}
	return dataset.ParseContentType(q.Get("content_type"))
}
