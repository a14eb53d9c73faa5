package engine

import (
	"io"
	"strings"
)

// Metadata rides along with pipeline data. Stages that reshape values must
// pass it through untouched unless they explicitly invalidate it.
type Metadata struct {
	// ContentType hints at how raw or textual output should be
	// interpreted, e.g. "application/json".
	ContentType string
	// Source names where the data came from, e.g. a file path.
	Source string
}

// PipelineData is the value stream flowing between command invocations.
// Construction never performs side effects; effects happen only while the
// data is drained, because a constructed stream may be discarded unused.
type PipelineData interface {
	Metadata() *Metadata
	WithMetadata(*Metadata) PipelineData
	// IntoValue collects the data into a single value.
	IntoValue(span Span) (Value, error)
	// Drain consumes and discards the data, running any pending effects.
	Drain() error
}

// Empty is the no-data variant.
type Empty struct{}

func (Empty) Metadata() *Metadata                 { return nil }
func (Empty) WithMetadata(*Metadata) PipelineData { return Empty{} }
func (Empty) IntoValue(span Span) (Value, error)  { return &Nothing{ValSpan: span}, nil }
func (Empty) Drain() error                        { return nil }

// ValueData carries one already-computed value.
type ValueData struct {
	Value Value
	Meta  *Metadata
}

func (d ValueData) Metadata() *Metadata { return d.Meta }
func (d ValueData) WithMetadata(m *Metadata) PipelineData {
	return ValueData{Value: d.Value, Meta: m}
}
func (d ValueData) IntoValue(Span) (Value, error) { return d.Value, nil }
func (d ValueData) Drain() error                  { return nil }

// ListStream is a lazily produced sequence of values. It is drained through
// Next, which polls the shared cancellation signal before every pull: once
// an interrupt is observed the stream fails fast instead of running to
// completion. A stream is not restartable; re-invoke the producing command
// to get a fresh one.
type ListStream struct {
	next    func() (Value, bool)
	signals Signals
	span    Span
	meta    *Metadata
	done    bool
	pending error // error raised by an upstream stage, surfaced on the next pull
}

// NewListStream wraps a pull function. next returns false when exhausted.
func NewListStream(span Span, signals Signals, next func() (Value, bool)) *ListStream {
	return &ListStream{next: next, signals: signals, span: span}
}

// StreamValues builds a stream over an in-memory slice.
func StreamValues(span Span, signals Signals, vals []Value) *ListStream {
	i := 0
	return NewListStream(span, signals, func() (Value, bool) {
		if i >= len(vals) {
			return nil, false
		}
		v := vals[i]
		i++
		return v, true
	})
}

func (s *ListStream) Metadata() *Metadata { return s.meta }

func (s *ListStream) WithMetadata(m *Metadata) PipelineData {
	s.meta = m
	return s
}

// Span returns the span the stream attributes failures to.
func (s *ListStream) Span() Span { return s.span }

// Next pulls the next value. It returns (nil, nil) when the stream is
// exhausted and an interrupted failure when cancellation was requested.
func (s *ListStream) Next() (Value, error) {
	if s.done {
		return nil, nil
	}
	if err := s.signals.Check(s.span); err != nil {
		s.done = true
		return nil, err
	}
	v, ok := s.next()
	if !ok {
		s.done = true
		err := s.pending
		s.pending = nil
		return nil, err
	}
	return v, nil
}

// Map applies f to every element, preserving metadata and the cancellation
// signal of the source stream. f may return a nil value to drop an element.
func (s *ListStream) Map(f func(Value) (Value, error)) *ListStream {
	out := NewListStream(s.span, s.signals, nil)
	out.meta = s.meta
	out.next = func() (Value, bool) {
		for {
			v, err := s.Next()
			if err != nil {
				out.pending = err
				return nil, false
			}
			if v == nil {
				return nil, false
			}
			mapped, err := f(v)
			if err != nil {
				out.pending = err
				return nil, false
			}
			if mapped == nil {
				continue
			}
			return mapped, true
		}
	}
	return out
}

// Where keeps only elements matching pred, preserving metadata.
func (s *ListStream) Where(pred func(Value) (bool, error)) *ListStream {
	return s.Map(func(v Value) (Value, error) {
		keep, err := pred(v)
		if err != nil {
			return nil, err
		}
		if !keep {
			return nil, nil
		}
		return v, nil
	})
}

func (s *ListStream) IntoValue(span Span) (Value, error) {
	vals := []Value{}
	for {
		v, err := s.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}
		vals = append(vals, v)
	}
	return &List{Values: vals, ValSpan: span}, nil
}

func (s *ListStream) Drain() error {
	for {
		v, err := s.Next()
		if err != nil {
			return err
		}
		if v == nil {
			return nil
		}
	}
}

// ByteStream carries raw bytes from an external producer. Reads poll the
// cancellation signal between chunks.
type ByteStream struct {
	Reader  io.Reader
	signals Signals
	span    Span
	meta    *Metadata
}

// NewByteStream wraps a reader.
func NewByteStream(span Span, signals Signals, r io.Reader) *ByteStream {
	return &ByteStream{Reader: r, signals: signals, span: span}
}

func (b *ByteStream) Metadata() *Metadata { return b.meta }

func (b *ByteStream) WithMetadata(m *Metadata) PipelineData {
	b.meta = m
	return b
}

func (b *ByteStream) IntoValue(span Span) (Value, error) {
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		if err := b.signals.Check(b.span); err != nil {
			return nil, err
		}
		n, err := b.Reader.Read(buf)
		sb.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewError(KindIO, b.span, "reading stream: %v", err)
		}
	}
	return &String{Value: sb.String(), ValSpan: span}, nil
}

func (b *ByteStream) Drain() error {
	buf := make([]byte, 4096)
	for {
		if err := b.signals.Check(b.span); err != nil {
			return err
		}
		_, err := b.Reader.Read(buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return NewError(KindIO, b.span, "draining stream: %v", err)
		}
	}
}

// IterateData adapts any pipeline data into a value stream so filters can
// treat single values, lists and streams uniformly. Metadata is preserved.
func IterateData(data PipelineData, span Span, signals Signals) *ListStream {
	switch d := data.(type) {
	case *ListStream:
		return d
	case ValueData:
		var stream *ListStream
		switch v := d.Value.(type) {
		case *List:
			stream = StreamValues(span, signals, v.Values)
		case *Range:
			iter := v.Iter()
			stream = NewListStream(span, signals, func() (Value, bool) { return iter() })
		default:
			stream = StreamValues(span, signals, []Value{d.Value})
		}
		stream.meta = d.Meta
		return stream
	default:
		return StreamValues(span, signals, nil)
	}
}
