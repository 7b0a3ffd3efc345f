package schema

import (
	"tablestore/pkg/errs"
	"tablestore/pkg/types"
)

// Builder constructs table descriptors with less boilerplate. Methods
// chain; validation happens once in Build.
type Builder struct {
	columns    []ColumnSpec
	allowEmpty bool
}

// NewBuilder creates a new descriptor builder.
func NewBuilder() *Builder {
	return &Builder{columns: make([]ColumnSpec, 0)}
}

// AddScalar adds a scalar column.
func (b *Builder) AddScalar(name string, t types.Type) *Builder {
	b.columns = append(b.columns, ColumnSpec{Name: name, Type: t, Shape: Scalar})
	return b
}

// AddFixedArray adds an array column whose per-cell shape is declared here
// for the whole column.
func (b *Builder) AddFixedArray(name string, t types.Type, dims ...uint32) *Builder {
	b.columns = append(b.columns, ColumnSpec{Name: name, Type: t, Shape: FixedArray, Dims: dims})
	return b
}

// AddVariableArray adds an array column whose per-cell shape may differ
// row to row.
func (b *Builder) AddVariableArray(name string, t types.Type) *Builder {
	b.columns = append(b.columns, ColumnSpec{Name: name, Type: t, Shape: VariableArray})
	return b
}

// WithComment attaches a free-text comment to the most recently added
// column. No-op when no column has been added yet.
func (b *Builder) WithComment(comment string) *Builder {
	if len(b.columns) > 0 {
		b.columns[len(b.columns)-1].Comment = comment
	}
	return b
}

// AllowEmpty permits building a descriptor with zero columns. Without it,
// an empty column set fails validation.
func (b *Builder) AllowEmpty() *Builder {
	b.allowEmpty = true
	return b
}

// Build validates the column set and constructs the descriptor.
//
// Fails with a Schema-coded error when a name repeats, a fixed-array spec
// has missing or non-positive dimensions, or the column set is empty and
// AllowEmpty was not called.
func (b *Builder) Build() (*TableDescriptor, error) {
	if len(b.columns) == 0 && !b.allowEmpty {
		return nil, errs.New(errs.CodeSchema, "descriptor has no columns; call AllowEmpty to permit an empty table")
	}

	index := make(map[string]int, len(b.columns))
	columns := make([]ColumnSpec, len(b.columns))

	for i := range b.columns {
		col := b.columns[i]
		if err := col.Validate(); err != nil {
			return nil, err
		}

		if _, dup := index[col.Name]; dup {
			return nil, errs.Newf(errs.CodeSchema, "duplicate column name %q", col.Name)
		}

		col.Dims = copyDims(col.Dims)
		columns[i] = col
		index[col.Name] = i
	}

	return &TableDescriptor{columns: columns, index: index}, nil
}
