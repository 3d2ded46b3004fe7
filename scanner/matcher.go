package scanner

import "github.com/koivunej/minipb/wire"

// DecisionKind is the verb half of a Matcher's Decision.
type DecisionKind uint8

const (
	// Skip consumes the field's bytes without surfacing it.
	Skip DecisionKind = iota
	// Emit surfaces the field to the caller as a Matched step, then
	// consumes its bytes.
	Emit
	// Enter descends into a LengthDelimited field's payload as a new,
	// nested scope. For any other wire type it degrades to Emit.
	Enter
	// Cont is the decision Matcher.Closed reports via its ok=false
	// return: "no exit event for this scope". It has no meaning as a
	// return from Match and is treated as Skip if one is returned there.
	Cont
)

// Decision is what a Matcher returns for a single field: what to do with
// it, and, for Emit/Enter, the opaque tag the matcher wants attached to
// the resulting event.
type Decision[T any] struct {
	Kind   DecisionKind
	Tag    T
	hasTag bool
}

// SkipField consumes a field's bytes and surfaces nothing.
func SkipField[T any]() Decision[T] {
	return Decision[T]{Kind: Skip}
}

// EmitField surfaces the field to the caller tagged with tag.
func EmitField[T any](tag T) Decision[T] {
	return Decision[T]{Kind: Emit, Tag: tag, hasTag: true}
}

// EnterScope descends into a LengthDelimited field's payload as a nested
// scope, surfacing a ScopeOpened event tagged with tag. For any other
// wire type this degrades to EmitField(tag).
func EnterScope[T any](tag T) Decision[T] {
	return Decision[T]{Kind: Enter, Tag: tag, hasTag: true}
}

// EnterScopeQuiet is like EnterScope but surfaces no ScopeOpened event;
// the scanner silently begins scanning inside the nested scope. For any
// wire type other than LengthDelimited, the field is skipped instead
// (there being no tag to emit it with).
func EnterScopeQuiet[T any]() Decision[T] {
	return Decision[T]{Kind: Enter}
}

// Matcher is a user-supplied, deterministic finite automaton over
// field-tag paths. It decides, for every field the scanner encounters,
// whether to skip it, surface it, or descend into it as a nested scope.
//
// S is the matcher's own state type, threaded through by the scanner
// without interpretation (it is the DFA's current node). T is the opaque
// tag type the matcher attaches to events it wants surfaced; the scanner
// never inspects it.
type Matcher[S any, T any] interface {
	// Match is called once for every field header the scanner decodes,
	// before any bytes of the field (beyond its header) are consumed.
	Match(state S, depth int, id wire.FieldID) Decision[T]

	// Closed is called once for every scope the scanner pops, including
	// the outermost document scope. If ok is true, tag is surfaced to
	// the caller as an EndOfScope event.
	Closed(state S, depth int) (tag T, ok bool)
}
