// Package scanner drives a Matcher DFA over a stream of protobuf field
// headers, maintaining a stack of nested length-delimited scopes and
// surfacing only the fields and scope boundaries the Matcher asks for.
//
// It never blocks and never allocates over the input: every Advance call
// either makes progress against a caller-supplied buffer or reports
// NeedMoreBytes without moving its cursor, so the call can be retried
// once more bytes are available. A length-delimited field whose Skip or
// Emit is waiting for its payload is remembered across that suspension,
// so its header is not decoded again on retry.
package scanner

import "github.com/koivunej/minipb/wire"

// DefaultMaxNestingDepth bounds the frame stack when a Fields is
// constructed with maxDepth <= 0.
const DefaultMaxNestingDepth = 64

type frame struct {
	endOffset int64
}

type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingSkip
	pendingEmit
)

// Fields is a pull-based scanner over one document's worth of protobuf
// wire-format bytes. S is the Matcher's state type; T is the Matcher's
// opaque tag type.
type Fields[S any, T any] struct {
	matcher  Matcher[S, T]
	state    S
	frames   []frame
	offset   int64
	maxDepth int

	pendingKind   pendingKind
	pendingTarget int64
	pendingDesc   wire.Descriptor
	pendingTag    T
	pendingDepth  int

	done bool
	err  error
}

// NewFields constructs a Fields that begins scanning at startOffset and
// treats outerLimit as the absolute end of the document; Advance reports
// Done once the document scope closes at that offset. maxDepth <= 0
// selects DefaultMaxNestingDepth.
func NewFields[S any, T any](matcher Matcher[S, T], state S, startOffset, outerLimit int64, maxDepth int) *Fields[S, T] {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}
	return &Fields[S, T]{
		matcher:  matcher,
		state:    state,
		frames:   []frame{{endOffset: outerLimit}},
		offset:   startOffset,
		maxDepth: maxDepth,
	}
}

// Offset reports the absolute offset the scanner next needs bytes from.
func (f *Fields[S, T]) Offset() int64 { return f.offset }

// Done reports whether the document scope has closed.
func (f *Fields[S, T]) Done() bool { return f.done }

// Advance decodes as far as buf allows. buf must hold the bytes starting
// at absolute offset base, and base may be any offset at or before
// f.Offset(); Advance never looks at bytes before its own cursor.
//
// It returns exactly one Step: an event (Matched, Skipped, ScopeOpened,
// EndOfScope), a suspension (NeedMoreBytes), or a terminal state (Done,
// Error). Frame pops whose Matcher.Closed returns no tag, and Enter
// decisions without a tag, produce no externally visible event; they are
// applied internally and looped past without returning.
func (f *Fields[S, T]) Advance(buf []byte, base int64) Step[T] {
	if f.err != nil {
		return Step[T]{Kind: Error, Err: f.err}
	}
	if f.done {
		return Step[T]{Kind: Done}
	}

	for {
		if f.pendingKind != pendingNone {
			if step, ok := f.resumePending(buf, base); ok {
				return step
			}
			continue
		}

		if step, ok := f.tryPopFrame(); ok {
			return step
		}
		if f.done {
			return Step[T]{Kind: Done}
		}

		localIdx := f.offset - base
		if localIdx < 0 || localIdx > int64(len(buf)) {
			return Step[T]{Kind: NeedMoreBytes, MinAdditional: 1}
		}

		desc, n, err := wire.ReadField(buf[localIdx:], f.offset)
		if err != nil {
			if nmb, ok := err.(*wire.NeedMoreBytes); ok {
				return Step[T]{Kind: NeedMoreBytes, MinAdditional: nmb.MinAdditional}
			}
			f.err = err
			return Step[T]{Kind: Error, Err: err}
		}

		top := f.frames[len(f.frames)-1]
		depth := len(f.frames) - 1
		fieldStart := f.offset
		headerEnd := f.offset + int64(n)
		remaining := top.endOffset - headerEnd
		footprint := desc.PayloadFootprint()
		if remaining < 0 || footprint > remaining {
			ferr := &FramingError{DeclaredLen: footprint, RemainingInFrame: remaining}
			f.err = ferr
			return Step[T]{Kind: Error, Err: ferr}
		}

		decision := f.matcher.Match(f.state, depth, desc.ID)

		step, ok := f.applyDecision(decision, desc, fieldStart, headerEnd, depth, buf, base)
		if ok {
			return step
		}
		// ok == false means the decision produced no event and needs no
		// further buffering (a quiet Enter); loop to process the next
		// field or frame boundary.
	}
}

// tryPopFrame pops the top frame if the cursor has reached its end,
// consulting Matcher.Closed. It reports (Step, true) when an EndOfScope
// event should be returned to the caller.
func (f *Fields[S, T]) tryPopFrame() (Step[T], bool) {
	if len(f.frames) == 0 {
		f.done = true
		return Step[T]{}, false
	}
	top := f.frames[len(f.frames)-1]
	if f.offset != top.endOffset {
		return Step[T]{}, false
	}

	depth := len(f.frames) - 1
	f.frames = f.frames[:len(f.frames)-1]
	tag, ok := f.matcher.Closed(f.state, depth)
	if len(f.frames) == 0 {
		f.done = true
	}
	if ok {
		return Step[T]{Kind: EndOfScope, PathDepth: depth, Tag: tag}, true
	}
	return Step[T]{}, false
}

// resumePending finishes a Skip or Emit of a length-delimited field whose
// payload was not fully buffered on a previous call. It returns (Step,
// true) whenever the caller should stop looping: either the payload is
// still incomplete (NeedMoreBytes) or the pending action has resolved
// into a Step.
func (f *Fields[S, T]) resumePending(buf []byte, base int64) (Step[T], bool) {
	target := f.pendingTarget
	if base+int64(len(buf)) < target {
		return Step[T]{Kind: NeedMoreBytes, MinAdditional: int(target - (base + int64(len(buf))))}, true
	}

	switch f.pendingKind {
	case pendingSkip:
		f.offset = target
		f.pendingKind = pendingNone
		return Step[T]{Kind: Skipped, NewCursor: target}, true
	case pendingEmit:
		desc := f.pendingDesc
		tag := f.pendingTag
		depth := f.pendingDepth
		f.offset = target
		f.pendingKind = pendingNone
		return Step[T]{
			Kind:      Matched,
			AbsOffset: desc.PayloadOffset,
			PathDepth: depth,
			Tag:       tag,
			Value:     Value{Type: wire.LengthDelimited, Slice: Slice{Offset: desc.PayloadOffset, Len: desc.PayloadLen}},
		}, true
	}
	return Step[T]{}, false
}

// applyDecision advances state per decision and reports (Step, true)
// when an event must be returned to the caller now, or when a
// NeedMoreBytes suspension is required to finish this field. It reports
// (_, false) when the decision was applied silently and scanning should
// continue with the next field or frame boundary.
func (f *Fields[S, T]) applyDecision(decision Decision[T], desc wire.Descriptor, fieldStart, headerEnd int64, depth int, buf []byte, base int64) (Step[T], bool) {
	isLD := desc.ID.Type == wire.LengthDelimited

	switch decision.Kind {
	case Skip, Cont:
		if !isLD {
			f.offset = headerEnd
			return Step[T]{Kind: Skipped, NewCursor: headerEnd}, true
		}
		target := headerEnd + desc.PayloadLen
		if base+int64(len(buf)) < target {
			f.pendingKind = pendingSkip
			f.pendingTarget = target
			return Step[T]{Kind: NeedMoreBytes, MinAdditional: int(target - (base + int64(len(buf))))}, true
		}
		f.offset = target
		return Step[T]{Kind: Skipped, NewCursor: target}, true

	case Emit:
		if !isLD {
			f.offset = headerEnd
			return Step[T]{
				Kind:      Matched,
				AbsOffset: fieldStart,
				PathDepth: depth,
				Tag:       decision.Tag,
				Value:     valueFromDescriptor(desc),
			}, true
		}
		target := headerEnd + desc.PayloadLen
		if base+int64(len(buf)) < target {
			f.pendingKind = pendingEmit
			f.pendingTarget = target
			f.pendingDesc = desc
			f.pendingTag = decision.Tag
			f.pendingDepth = depth
			return Step[T]{Kind: NeedMoreBytes, MinAdditional: int(target - (base + int64(len(buf))))}, true
		}
		f.offset = target
		return Step[T]{
			Kind:      Matched,
			AbsOffset: desc.PayloadOffset,
			PathDepth: depth,
			Tag:       decision.Tag,
			Value:     Value{Type: wire.LengthDelimited, Slice: Slice{Offset: desc.PayloadOffset, Len: desc.PayloadLen}},
		}, true

	case Enter:
		if !isLD {
			if !decision.hasTag {
				f.offset = headerEnd
				return Step[T]{Kind: Skipped, NewCursor: headerEnd}, true
			}
			f.offset = headerEnd
			return Step[T]{
				Kind:      Matched,
				AbsOffset: fieldStart,
				PathDepth: depth,
				Tag:       decision.Tag,
				Value:     valueFromDescriptor(desc),
			}, true
		}
		if len(f.frames) >= f.maxDepth {
			f.err = ErrNestingTooDeep
			return Step[T]{Kind: Error, Err: ErrNestingTooDeep}, true
		}
		f.frames = append(f.frames, frame{endOffset: headerEnd + desc.PayloadLen})
		f.offset = headerEnd
		if decision.hasTag {
			return Step[T]{
				Kind:      ScopeOpened,
				AbsOffset: desc.PayloadOffset,
				PathDepth: depth + 1,
				Tag:       decision.Tag,
				Value:     Value{Type: wire.LengthDelimited, Slice: Slice{Offset: desc.PayloadOffset, Len: desc.PayloadLen}},
			}, true
		}
		return Step[T]{}, false
	}

	// Unreachable: DecisionKind has no other values.
	f.offset = headerEnd
	return Step[T]{Kind: Skipped, NewCursor: headerEnd}, true
}

func valueFromDescriptor(desc wire.Descriptor) Value {
	return Value{Type: desc.ID.Type, Number: desc.Value}
}
