// Package format implements the four output formatters: a human-readable
// report, a declaration-file (.d.flow) form, structured JSON, and an
// inline-comment source overlay. None of these formatters participate in
// inference; they only serialize the []TypeAnnotation / []InferenceError
// the core already produced.
package format
