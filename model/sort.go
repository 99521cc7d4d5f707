package model

// SortType identifies the value domain a sort field is compared in.
type SortType int

const (
	// SortScore orders by the sub-query's relevance score (descending by
	// default, like any score sort).
	SortScore SortType = iota
	// SortDoc orders by document id.
	SortDoc
	// SortInt64 orders by a numeric doc value.
	SortInt64
	// SortFloat64 orders by a floating-point doc value.
	SortFloat64
	// SortKeyword orders by a keyword doc value.
	SortKeyword
)

// SortField is one component of a sort specification.
type SortField struct {
	// Field is the doc-values field name. Empty for SortScore and SortDoc.
	Field string
	Type  SortType
	// Reverse flips the natural order of the field. The natural order is
	// ascending for everything except SortScore, which is descending.
	Reverse bool
}

// Equal reports whether two sort fields are interchangeable.
func (f SortField) Equal(other SortField) bool {
	return f.Field == other.Field && f.Type == other.Type && f.Reverse == other.Reverse
}

// Sort is an ordered list of sort fields; earlier fields dominate.
type Sort struct {
	Fields []SortField
}

// NewSort creates a sort over the given fields.
func NewSort(fields ...SortField) Sort {
	return Sort{Fields: fields}
}

// IsPrefixOf reports whether this sort is a compatible prefix of the index
// sort, which allows collection to stop once enough hits are gathered.
func (s Sort) IsPrefixOf(indexSort Sort) bool {
	if len(s.Fields) == 0 || len(s.Fields) > len(indexSort.Fields) {
		return false
	}
	for i, f := range s.Fields {
		if !f.Equal(indexSort.Fields[i]) {
			return false
		}
	}
	return true
}

// ByDocID reports whether the primary sort key is the document id in its
// natural order, which always allows early termination.
func (s Sort) ByDocID() bool {
	return len(s.Fields) > 0 && s.Fields[0].Type == SortDoc && !s.Fields[0].Reverse
}
