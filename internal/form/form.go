package form

// Field names of the booking form.
const (
	FieldName    = "name"
	FieldDate    = "date"
	FieldTime    = "time"
	FieldService = "service"
	FieldPhone   = "phone"
	FieldAddress = "address"
	FieldNotes   = "notes"
)

// Field is a single named form value. Invalid is recomputed on every
// validation pass.
type Field struct {
	Name     string
	Value    string
	Required bool
	Invalid  bool
}

// FieldSet is an ordered collection of form fields.
type FieldSet struct {
	fields []*Field
	index  map[string]*Field
}

// NewFieldSet builds a field set preserving declaration order.
func NewFieldSet(fields ...Field) *FieldSet {
	fs := &FieldSet{index: make(map[string]*Field, len(fields))}
	for i := range fields {
		f := fields[i]
		fs.fields = append(fs.fields, &f)
		fs.index[f.Name] = &f
	}
	return fs
}

// NewBookingFieldSet returns the standard booking form: all fields
// required except notes.
func NewBookingFieldSet() *FieldSet {
	return NewFieldSet(
		Field{Name: FieldName, Required: true},
		Field{Name: FieldDate, Required: true},
		Field{Name: FieldTime, Required: true},
		Field{Name: FieldService, Required: true},
		Field{Name: FieldPhone, Required: true},
		Field{Name: FieldAddress, Required: true},
		Field{Name: FieldNotes},
	)
}

// Field returns the named field, or nil when absent.
func (fs *FieldSet) Field(name string) *Field {
	return fs.index[name]
}

// Get returns the raw value of the named field.
func (fs *FieldSet) Get(name string) string {
	if f := fs.index[name]; f != nil {
		return f.Value
	}
	return ""
}

// Set stores a value into the named field. Unknown names are ignored.
func (fs *FieldSet) Set(name, value string) {
	if f := fs.index[name]; f != nil {
		f.Value = value
	}
}

// Fields returns the fields in declaration order.
func (fs *FieldSet) Fields() []*Field {
	return fs.fields
}

// InvalidNames returns the names of fields currently marked invalid.
func (fs *FieldSet) InvalidNames() []string {
	var names []string
	for _, f := range fs.fields {
		if f.Invalid {
			names = append(names, f.Name)
		}
	}
	return names
}

// Reset clears every value and invalid mark.
func (fs *FieldSet) Reset() {
	for _, f := range fs.fields {
		f.Value = ""
		f.Invalid = false
	}
}
