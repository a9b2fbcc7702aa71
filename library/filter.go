package library

// Reducer narrows a collection given the selected value of one filter
// dimension. Reducers must be pure: same input, same output.
type Reducer[T any] func(items []T, value string) []T

// Registry maps a dimension name to the reducer that implements it.
type Registry[T any] map[string]Reducer[T]

// Apply derives the filtered view of items. The input is returned unchanged
// when no dimension is active, when the active dimension has no value, or when
// the registry has no reducer for it.
func Apply[T any](items []T, registry Registry[T], dimension string, values map[string]string) []T {
	if dimension == "" {
		return items
	}
	value := values[dimension]
	if value == "" {
		return items
	}
	reduce, ok := registry[dimension]
	if !ok || reduce == nil {
		return items
	}
	return reduce(items, value)
}

// MatchField builds a reducer keeping the items whose field equals the
// selected value exactly. Relative order is preserved.
func MatchField[T any](field func(T) string) Reducer[T] {
	return func(items []T, value string) []T {
		out := make([]T, 0, len(items))
		for _, item := range items {
			if field(item) == value {
				out = append(out, item)
			}
		}
		return out
	}
}

// Book filter dimensions.
const (
	DimensionGenre  = "genre"
	DimensionStatus = "status"
)

// BookFilters returns the registry used by the list screen.
func BookFilters() Registry[Book] {
	return Registry[Book]{
		DimensionGenre:  MatchField(func(b Book) string { return string(b.Genre) }),
		DimensionStatus: MatchField(func(b Book) string { return string(b.Status) }),
	}
}

// FilterState is the active dimension plus the selected value per dimension.
// An empty value means "no constraint". It enforces nothing about how many
// dimensions hold values; that is up to the caller.
type FilterState struct {
	Dimension string
	Values    map[string]string
}

// SetDimension changes the active dimension without touching any values.
func (s *FilterState) SetDimension(dimension string) {
	s.Dimension = dimension
}

// SetValue records the selected value for dimension.
func (s *FilterState) SetValue(dimension, value string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	s.Values[dimension] = value
}

// Clear empties the value of a single dimension.
func (s *FilterState) Clear(dimension string) {
	s.SetValue(dimension, "")
}

// ClearAll empties every dimension's value, keeping the keys.
func (s *FilterState) ClearAll() {
	for k := range s.Values {
		s.Values[k] = ""
	}
}

// Reset drops the active dimension and every value.
func (s *FilterState) Reset() {
	s.Dimension = ""
	s.Values = nil
}

// Value returns the selected value for dimension.
func (s FilterState) Value(dimension string) string {
	return s.Values[dimension]
}

// ActiveValue returns the value of the active dimension.
func (s FilterState) ActiveValue() string {
	return s.Value(s.Dimension)
}

func (s FilterState) clone() FilterState {
	values := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	return FilterState{Dimension: s.Dimension, Values: values}
}
