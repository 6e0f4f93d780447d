package catalogapi

import (
	"net/url"
	"strconv"
	"strings"
)

// ProductFilter narrows the product list. Zero values mean "unset".
type ProductFilter struct {
	Query      string
	CategoryID int64
	InStock    *bool
}

// Encode renders the set filters as a query string in the fixed order
// query, category_id, in_stock. Unset filters are omitted entirely.
func (f ProductFilter) Encode() string {
	parts := make([]string, 0, 3)
	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, "query="+url.QueryEscape(q))
	}
	if f.CategoryID > 0 {
		parts = append(parts, "category_id="+strconv.FormatInt(f.CategoryID, 10))
	}
	if f.InStock != nil {
		parts = append(parts, "in_stock="+strconv.FormatBool(*f.InStock))
	}
	return strings.Join(parts, "&")
}

// IsZero reports whether no filter is set.
func (f ProductFilter) IsZero() bool {
	return f.Encode() == ""
}

// ParseProductFilter reads filters from form or query values. Blank and
// malformed values are treated as unset.
func ParseProductFilter(values url.Values) ProductFilter {
	var filter ProductFilter
	filter.Query = strings.TrimSpace(values.Get("query"))
	if id, err := strconv.ParseInt(strings.TrimSpace(values.Get("category_id")), 10, 64); err == nil && id > 0 {
		filter.CategoryID = id
	}
	switch strings.ToLower(strings.TrimSpace(values.Get("in_stock"))) {
	case "true":
		v := true
		filter.InStock = &v
	case "false":
		v := false
		filter.InStock = &v
	}
	return filter
}
