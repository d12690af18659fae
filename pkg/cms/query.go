package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Operator is a filter comparison operator as understood by the backend.
type Operator string

const (
	OpEq        Operator = "$eq"
	OpEqi       Operator = "$eqi"
	OpNe        Operator = "$ne"
	OpGt        Operator = "$gt"
	OpGte       Operator = "$gte"
	OpLt        Operator = "$lt"
	OpLte       Operator = "$lte"
	OpIn        Operator = "$in"
	OpNotIn     Operator = "$notIn"
	OpContains  Operator = "$contains"
	OpContainsi Operator = "$containsi"
	OpNull      Operator = "$null"
	OpNotNull   Operator = "$notNull"

	opAnd Operator = "$and"
	opOr  Operator = "$or"
	opNot Operator = "$not"
)

type filterKind int

const (
	filterPredicate filterKind = iota
	filterLogical
	filterRelation
	filterRaw
)

// Filter is one node of a filter tree: a predicate on a (possibly dotted)
// field path, a logical combinator, a relation scope, or a raw object that is
// passed through untouched.
type Filter struct {
	kind     filterKind
	field    string
	op       Operator
	value    any
	children []Filter
	raw      map[string]any
}

// Where builds a predicate. A dotted field such as "categories.slug" filters
// through the relation path.
func Where(field string, op Operator, value any) Filter {
	return Filter{kind: filterPredicate, field: field, op: op, value: value}
}

// Eq matches field == value.
func Eq(field string, value any) Filter { return Where(field, OpEq, value) }

// Ne matches field != value.
func Ne(field string, value any) Filter { return Where(field, OpNe, value) }

// Gt matches field > value.
func Gt(field string, value any) Filter { return Where(field, OpGt, value) }

// Gte matches field >= value.
func Gte(field string, value any) Filter { return Where(field, OpGte, value) }

// Lt matches field < value.
func Lt(field string, value any) Filter { return Where(field, OpLt, value) }

// Lte matches field <= value.
func Lte(field string, value any) Filter { return Where(field, OpLte, value) }

// In matches when field is one of values.
func In(field string, values ...any) Filter { return Where(field, OpIn, values) }

// Contains matches a substring, case sensitive.
func Contains(field string, value string) Filter { return Where(field, OpContains, value) }

// And requires every child to match.
func And(filters ...Filter) Filter {
	return Filter{kind: filterLogical, op: opAnd, children: filters}
}

// Or requires at least one child to match.
func Or(filters ...Filter) Filter {
	return Filter{kind: filterLogical, op: opOr, children: filters}
}

// Not negates its child.
func Not(filter Filter) Filter {
	return Filter{kind: filterLogical, op: opNot, children: []Filter{filter}}
}

// Relation scopes the child filters under a relation name.
func Relation(name string, filters ...Filter) Filter {
	return Filter{kind: filterRelation, field: name, children: filters}
}

// RawFilter passes an already-shaped filter object through unchanged.
func RawFilter(tree map[string]any) Filter {
	return Filter{kind: filterRaw, raw: tree}
}

// Tree renders the node into its wire object.
func (f Filter) Tree() map[string]any {
	switch f.kind {
	case filterLogical:
		if f.op == opNot {
			if len(f.children) == 0 {
				return map[string]any{}
			}

			return map[string]any{string(opNot): f.children[0].Tree()}
		}

		items := make([]any, 0, len(f.children))
		for _, child := range f.children {
			items = append(items, child.Tree())
		}

		return map[string]any{string(f.op): items}
	case filterRelation:
		return map[string]any{f.field: mergeFilters(f.children)}
	case filterRaw:
		if f.raw == nil {
			return map[string]any{}
		}

		return f.raw
	default:
		var node any = map[string]any{string(f.op): f.value}

		parts := strings.Split(f.field, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			node = map[string]any{parts[i]: node}
		}

		tree, _ := node.(map[string]any)

		return tree
	}
}

func mergeFilters(filters []Filter) map[string]any {
	merged := map[string]any{}
	for _, filter := range filters {
		deepMerge(merged, filter.Tree())
	}

	return merged
}

func deepMerge(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)

		if srcIsMap && dstIsMap {
			deepMerge(dstMap, srcMap)

			continue
		}

		if srcIsMap {
			copied := map[string]any{}
			deepMerge(copied, srcMap)
			dst[key] = copied

			continue
		}

		dst[key] = value
	}
}

// SortToken formats a field:direction sort token.
func SortToken(field string, direction Direction) string {
	return field + ":" + string(direction)
}

// Pagination selects a page either by page number or by offset. Only the set
// fields are sent.
type Pagination struct {
	Page     *int
	PageSize *int
	Start    *int
	Limit    *int
}

// PageBased returns page/pageSize pagination.
func PageBased(page, pageSize int) *Pagination {
	return &Pagination{Page: &page, PageSize: &pageSize}
}

// OffsetBased returns start/limit pagination.
func OffsetBased(start, limit int) *Pagination {
	return &Pagination{Start: &start, Limit: &limit}
}

type keyValue struct {
	key   string
	value int
}

func (p *Pagination) pairs() []keyValue {
	if p == nil {
		return nil
	}

	var out []keyValue

	for _, field := range []struct {
		key   string
		value *int
	}{
		{"page", p.Page},
		{"pageSize", p.PageSize},
		{"start", p.Start},
		{"limit", p.Limit},
	} {
		if field.value != nil {
			out = append(out, keyValue{key: field.key, value: *field.value})
		}
	}

	return out
}

// PopulateRelation describes how one relation is expanded in nested populate.
type PopulateRelation struct {
	Fields   []string
	Sort     []string
	Filters  []Filter
	Populate *Populate
}

func (r PopulateRelation) value() any {
	if len(r.Fields) == 0 && len(r.Sort) == 0 && len(r.Filters) == 0 && r.Populate == nil {
		return true
	}

	out := map[string]any{}
	if len(r.Fields) > 0 {
		out["fields"] = r.Fields
	}

	if len(r.Sort) > 0 {
		out["sort"] = r.Sort
	}

	if len(r.Filters) > 0 {
		out["filters"] = mergeFilters(r.Filters)
	}

	if r.Populate != nil {
		out["populate"] = r.Populate.value()
	}

	return out
}

// Populate selects which relations the backend expands. It renders as a bare
// name, a comma-joined list, or a JSON object, whichever the contents need.
type Populate struct {
	fields    []string
	relations map[string]PopulateRelation
}

// PopulateFields expands the named relations one level deep.
func PopulateFields(fields ...string) *Populate {
	return &Populate{fields: fields}
}

// PopulateAll expands every first-level relation.
func PopulateAll() *Populate {
	return PopulateFields("*")
}

// PopulateNested expands relations with per-relation options.
func PopulateNested(relations map[string]PopulateRelation) *Populate {
	return &Populate{relations: relations}
}

// With adds a nested relation.
func (p *Populate) With(name string, relation PopulateRelation) *Populate {
	if p.relations == nil {
		p.relations = map[string]PopulateRelation{}
	}

	p.relations[name] = relation

	return p
}

func (p *Populate) value() any {
	if len(p.relations) == 0 {
		if len(p.fields) == 1 {
			return p.fields[0]
		}

		return p.fields
	}

	out := make(map[string]any, len(p.fields)+len(p.relations))
	for _, field := range p.fields {
		out[field] = true
	}

	for name, relation := range p.relations {
		out[name] = relation.value()
	}

	return out
}

func (p *Populate) queryValue() string {
	switch value := p.value().(type) {
	case string:
		return value
	case []string:
		return strings.Join(value, ",")
	default:
		encoded, _ := json.Marshal(value)

		return string(encoded)
	}
}

func (p *Populate) isEmpty() bool {
	return p == nil || (len(p.fields) == 0 && len(p.relations) == 0)
}

// MarshalJSON renders the populate value in its wire shape.
func (p *Populate) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(p.value())
	if err != nil {
		return nil, fmt.Errorf("encoding populate: %w", err)
	}

	return data, nil
}

// QueryParams is the structured query for a read call. Unset fields are left
// out of both the query string and the cache key.
type QueryParams struct {
	Filters    []Filter
	Sort       []string
	Pagination *Pagination
	Populate   *Populate
	Fields     []string
	// Extra holds endpoint-specific top-level parameters such as limit.
	Extra map[string]any
}

// NewQueryParams creates an empty query.
func NewQueryParams() *QueryParams {
	return &QueryParams{}
}

// WithFilter adds filters; multiple filters are merged into one object.
func (q *QueryParams) WithFilter(filters ...Filter) *QueryParams {
	q.Filters = append(q.Filters, filters...)

	return q
}

// WithSort appends a sort token.
func (q *QueryParams) WithSort(field string, direction Direction) *QueryParams {
	q.Sort = append(q.Sort, SortToken(field, direction))

	return q
}

// WithPage sets page-based pagination.
func (q *QueryParams) WithPage(page, pageSize int) *QueryParams {
	q.Pagination = PageBased(page, pageSize)

	return q
}

// WithOffset sets offset-based pagination.
func (q *QueryParams) WithOffset(start, limit int) *QueryParams {
	q.Pagination = OffsetBased(start, limit)

	return q
}

// WithPopulate sets relation expansion.
func (q *QueryParams) WithPopulate(populate *Populate) *QueryParams {
	q.Populate = populate

	return q
}

// WithFields sets the sparse fieldset.
func (q *QueryParams) WithFields(fields ...string) *QueryParams {
	q.Fields = fields

	return q
}

// WithExtra sets an endpoint-specific parameter.
func (q *QueryParams) WithExtra(key string, value any) *QueryParams {
	if q.Extra == nil {
		q.Extra = map[string]any{}
	}

	q.Extra[key] = value

	return q
}

// FilterTree merges all filters into the single object sent as filters=.
func (q *QueryParams) FilterTree() map[string]any {
	if q == nil || len(q.Filters) == 0 {
		return nil
	}

	return mergeFilters(q.Filters)
}

// IsEmpty reports whether no parameter is set.
func (q *QueryParams) IsEmpty() bool {
	return q == nil || (len(q.Filters) == 0 && len(q.Sort) == 0 && len(q.Pagination.pairs()) == 0 &&
		q.Populate.isEmpty() && len(q.Fields) == 0 && len(q.Extra) == 0)
}

func (q *QueryParams) extraKeys() []string {
	keys := make([]string, 0, len(q.Extra))
	for key := range q.Extra {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Encode renders the canonical query string, including the leading "?", in
// the order filters, sort, pagination, populate, fields, then extras by key.
// An empty query renders as "".
func (q *QueryParams) Encode() string {
	if q.IsEmpty() {
		return ""
	}

	var parts []string

	if tree := q.FilterTree(); len(tree) > 0 {
		encoded, _ := json.Marshal(tree)
		parts = append(parts, "filters="+escape(string(encoded)))
	}

	if len(q.Sort) > 0 {
		parts = append(parts, "sort="+escape(strings.Join(q.Sort, ",")))
	}

	for _, pair := range q.Pagination.pairs() {
		parts = append(parts, "pagination["+pair.key+"]="+strconv.Itoa(pair.value))
	}

	if !q.Populate.isEmpty() {
		parts = append(parts, "populate="+escape(q.Populate.queryValue()))
	}

	if len(q.Fields) > 0 {
		parts = append(parts, "fields="+escape(strings.Join(q.Fields, ",")))
	}

	for _, key := range q.extraKeys() {
		parts = append(parts, escape(key)+"="+escape(fmt.Sprint(q.Extra[key])))
	}

	if len(parts) == 0 {
		return ""
	}

	return "?" + strings.Join(parts, "&")
}

// Values returns the query as url.Values, decoded.
func (q *QueryParams) Values() url.Values {
	encoded := strings.TrimPrefix(q.Encode(), "?")

	values, err := url.ParseQuery(encoded)
	if err != nil {
		return url.Values{}
	}

	return values
}

// MarshalJSON renders a deterministic object used in cache keys. Key order
// follows the query string order.
func (q *QueryParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false
		name, _ := json.Marshal(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(encoded)

		return nil
	}

	if q != nil {
		if tree := q.FilterTree(); len(tree) > 0 {
			if err := write("filters", tree); err != nil {
				return nil, err
			}
		}

		if len(q.Sort) > 0 {
			if err := write("sort", q.Sort); err != nil {
				return nil, err
			}
		}

		if pairs := q.Pagination.pairs(); len(pairs) > 0 {
			if err := write("pagination", orderedPagination(pairs)); err != nil {
				return nil, err
			}
		}

		if !q.Populate.isEmpty() {
			if err := write("populate", q.Populate); err != nil {
				return nil, err
			}
		}

		if len(q.Fields) > 0 {
			if err := write("fields", q.Fields); err != nil {
				return nil, err
			}
		}

		for _, key := range q.extraKeys() {
			if err := write(key, q.Extra[key]); err != nil {
				return nil, err
			}
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

type orderedPagination []keyValue

func (p orderedPagination) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, pair := range p {
		if i > 0 {
			buf.WriteByte(',')
		}

		fmt.Fprintf(&buf, "%q:%d", pair.key, pair.value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// CacheKeyPart is the serialized form used in cache keys; a nil query is "{}".
func (q *QueryParams) CacheKeyPart() string {
	data, err := q.MarshalJSON()
	if err != nil {
		return "{}"
	}

	return string(data)
}

// Clone returns a copy that can be modified without touching q.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	out := &QueryParams{
		Filters:    append([]Filter(nil), q.Filters...),
		Sort:       append([]string(nil), q.Sort...),
		Pagination: q.Pagination,
		Populate:   q.Populate,
		Fields:     append([]string(nil), q.Fields...),
	}

	if len(q.Extra) > 0 {
		out.Extra = make(map[string]any, len(q.Extra))
		for key, value := range q.Extra {
			out.Extra[key] = value
		}
	}

	return out
}

// Merge layers override on top of q. Filters from both are combined; every
// other field set in override replaces the one in q.
func (q *QueryParams) Merge(override *QueryParams) *QueryParams {
	out := q.Clone()
	if override == nil {
		return out
	}

	out.Filters = append(out.Filters, override.Filters...)

	if len(override.Sort) > 0 {
		out.Sort = append([]string(nil), override.Sort...)
	}

	if len(override.Pagination.pairs()) > 0 {
		out.Pagination = override.Pagination
	}

	if !override.Populate.isEmpty() {
		out.Populate = override.Populate
	}

	if len(override.Fields) > 0 {
		out.Fields = append([]string(nil), override.Fields...)
	}

	for key, value := range override.Extra {
		out.WithExtra(key, value)
	}

	return out
}

func escape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}
