package types

import "strings"

// Field is one entry of a RecordType.
type Field struct {
	Name         string
	Type         Type
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// RecordType is an object type: an ordered field mapping, an optional
// prototype reference, and sealed/frozen flags; a sealed or frozen
// record forbids width extension.
type RecordType struct {
	Fields    []Field // order preserved so string output is deterministic
	Proto     Type    // nullable prototype reference; nil means no prototype
	Sealed    bool
	Frozen    bool
	// Open marks a record built from an object literal with a computed
	// key: property access against it degrades to `top`
	// with reason "dynamic-key" rather than a hard error.
	Open bool
}

func (RecordType) Tag() Tag { return TagRecord }

// Field looks up a field by name, returning ok=false if absent.
func (r RecordType) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// WithField returns a copy of r with field name set/replaced, preserving
// insertion order for existing fields and appending new ones; records are
// structurally interned by value, so this never mutates the receiver. A
// sealed or frozen r gains no new field: it is returned unchanged when f
// names a field r does not have.
func (r RecordType) WithField(f Field) RecordType {
	out := RecordType{Proto: r.Proto, Sealed: r.Sealed, Frozen: r.Frozen, Open: r.Open}
	replaced := false
	for _, existing := range r.Fields {
		if existing.Name == f.Name {
			out.Fields = append(out.Fields, f)
			replaced = true
		} else {
			out.Fields = append(out.Fields, existing)
		}
	}
	if !replaced {
		if r.Sealed || r.Frozen {
			return r
		}
		out.Fields = append(out.Fields, f)
	}
	return out
}

func (r RecordType) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Record builds a plain record from an ordered field list. Fields default
// to writable/enumerable/configurable; callers needing otherwise build a
// RecordType literal directly.
func Record(fields ...Field) Type {
	for i := range fields {
		if !fields[i].Writable && !fields[i].Enumerable && !fields[i].Configurable {
			fields[i].Writable, fields[i].Enumerable, fields[i].Configurable = true, true, true
		}
	}
	return RecordType{Fields: fields}
}

// EmptyRecord is `{}`, the identity record for field-wise meet (and the
// absorbing one for field-wise join, which keeps only shared fields).
func EmptyRecord() Type { return RecordType{} }

// maxPrototypeChainDepth bounds prototype-chain lookups. No constructor
// checks Proto for cycles, so this bound is the only cycle guard: a chain
// longer than it is treated as cyclic.
const maxPrototypeChainDepth = 64

// LookupPrototypeChain walks Proto references looking for name, treating
// an over-long chain as a cycle and degrades the lookup to top.
func LookupPrototypeChain(r RecordType, name string) (Type, bool) {
	cur := r
	for depth := 0; depth < maxPrototypeChainDepth; depth++ {
		if f, ok := cur.Field(name); ok {
			return f.Type, true
		}
		if cur.Proto == nil {
			return nil, false
		}
		next, ok := cur.Proto.(RecordType)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return Top("prototype-cycle"), true
}
