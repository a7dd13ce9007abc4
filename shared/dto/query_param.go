package dto

import (
	"localguide/shared/constant"
	"net/http"
	"strconv"
	"strings"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest populates QueryParams from the HTTP request.
// With `defaultRequest` set to true, Page and Limit fall back to 1 and 10.
// Limit is always capped at constant.MaxValueLimit.
//
//	q := &dto.QueryParams{}
//	q.FromRequest(req, true)
//
// sort_order is accepted as an alias of sort_dir.
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	queryParams := r.URL.Query()

	if page := queryParams.Get(constant.RequestParamPage); page != "" {
		if pageInt, err := strconv.Atoi(page); err == nil && pageInt > 0 {
			q.Page = pageInt
		}
	}

	if limit := queryParams.Get(constant.RequestParamLimit); limit != "" {
		if limitInt, err := strconv.Atoi(limit); err == nil && limitInt > 0 {
			q.Limit = min(limitInt, constant.MaxValueLimit)
		}
	}

	if sortBy := queryParams.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	sortDir := queryParams.Get(constant.RequestParamSortDir)
	if sortDir == "" {
		sortDir = queryParams.Get(constant.RequestParamSortOrder)
	}

	if strings.ToUpper(sortDir) == SortDirAsc || strings.ToUpper(sortDir) == SortDirDesc {
		q.SortDir = strings.ToUpper(sortDir)
	}

	if defaultRequest {
		if q.Page == 0 {
			q.Page = constant.DefaultValuePage
		}

		if q.Limit == 0 {
			q.Limit = constant.DefaultValueLimit
		}
	}
}

// ResolveSort maps the requested sort key onto a column expression from the allowed set.
// Unknown keys fall back to defaultKey and a missing direction falls back to DESC.
func (q *QueryParams) ResolveSort(allowed map[string]string, defaultKey string) {
	column, ok := allowed[q.SortBy]
	if !ok {
		column = allowed[defaultKey]
	}

	q.SortBy = column

	if q.SortDir == "" {
		q.SortDir = constant.DefaultValueSortDir
	}
}
