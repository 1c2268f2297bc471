package ast

import "github.com/funvibe/flowtype/internal/token"

// The constructors below exist purely for caller convenience (chiefly the
// parser package): building small leaf nodes inline without spelling out
// the Span field by hand.

func NewIdentifier(name string, start, end token.Position) *Identifier {
	return &Identifier{Span: Span{Start: start, Stop: end}, Name: name}
}

func NewRestElement(target Pattern, start, end token.Position) *RestElement {
	return &RestElement{Span: Span{Start: start, Stop: end}, Target: target}
}

func NewAssignmentPattern(target Pattern, def Expression) *AssignmentPattern {
	return &AssignmentPattern{Span: Span{Start: target.Pos(), Stop: def.End()}, Target: target, Default: def}
}

func NewObjectPatternProp(key string, target Pattern, def Expression, start, end token.Position) *ObjectPatternProp {
	return &ObjectPatternProp{Span: Span{Start: start, Stop: end}, Key: key, Target: target, Default: def}
}
