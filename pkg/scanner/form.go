package scanner

import "sync"

// TokenField is the well-known name of the field that receives scan results.
const TokenField = "token"

// Form models the page surface the scanner writes into: a set of named
// input fields. Lookups for absent fields simply report not-found.
type Form struct {
	mu     sync.RWMutex
	fields map[string]*Field
}

// NewForm creates a form containing the given field names, all empty.
func NewForm(names ...string) *Form {
	f := &Form{fields: make(map[string]*Field, len(names))}
	for _, name := range names {
		f.fields[name] = &Field{name: name}
	}
	return f
}

// Field returns the named field, or false if the form has no such field.
func (f *Form) Field(name string) (*Field, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	field, ok := f.fields[name]
	return field, ok
}

// Field is a single named input with a mutable value.
type Field struct {
	name  string
	mu    sync.RWMutex
	value string
}

// Name returns the field name.
func (f *Field) Name() string {
	return f.name
}

// Value returns the current field value.
func (f *Field) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// SetValue overwrites the field value. Any prior value is lost.
func (f *Field) SetValue(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}
