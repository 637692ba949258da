package edit

import "git.lost.host/meutraa/fretedit/internal/events"

// Sustainer is a payload with a resizable length.
type Sustainer[T any] interface {
	SustainLength() Tick
	WithSustain(length Tick) T
}

// Sustain is a drag resize of the lengths of some entries. The lengths from
// before the drag are captured when it begins.
type Sustain[T Sustainer[T]] struct {
	Data  *events.EventData[T]
	Ticks []Tick
	// CapAtNext stops a sustain at the next entry of the same collection.
	CapAtNext bool

	original map[Tick]Tick
	final    map[Tick]Tick
	active   bool
}

func BeginSustain[T Sustainer[T]](data *events.EventData[T], ticks []Tick) *Sustain[T] {
	s := &Sustain[T]{
		Data:     data,
		original: map[Tick]Tick{},
		active:   true,
	}
	for _, t := range ticks {
		if v, ok := data.Get(t); ok {
			s.Ticks = append(s.Ticks, t)
			s.original[t] = v.SustainLength()
		}
	}
	return s
}

// Step stretches every sustain to end at end. Lengths never go below zero.
func (s *Sustain[T]) Step(end Tick) bool {
	if !s.active {
		return false
	}
	lengths := make(map[Tick]Tick, len(s.Ticks))
	for _, t := range s.Ticks {
		length := end - t
		if length < 0 {
			length = 0
		}
		if s.CapAtNext {
			if next := s.Data.NextTick(t, false); next != events.NoTick && t+length > next {
				length = next - t
			}
		}
		lengths[t] = length
	}
	return s.apply(lengths)
}

func (s *Sustain[T]) apply(lengths map[Tick]Tick) bool {
	changed := false
	s.Data.Batch(func() {
		for _, t := range s.Ticks {
			length, ok := lengths[t]
			if !ok {
				continue
			}
			v, ok := s.Data.Get(t)
			if !ok || v.SustainLength() == length {
				continue
			}
			s.Data.Set(t, v.WithSustain(length))
			changed = true
		}
	})
	return changed
}

func (s *Sustain[T]) current() map[Tick]Tick {
	lengths := make(map[Tick]Tick, len(s.Ticks))
	for _, t := range s.Ticks {
		if v, ok := s.Data.Get(t); ok {
			lengths[t] = v.SustainLength()
		}
	}
	return lengths
}

// Complete ends the drag and returns it as an action, or nil when no length
// changed.
func (s *Sustain[T]) Complete() Action {
	if !s.active {
		return nil
	}
	s.active = false
	s.final = s.current()
	for t, length := range s.final {
		if s.original[t] != length {
			return s
		}
	}
	return nil
}

// Cancel ends the drag and restores the captured lengths.
func (s *Sustain[T]) Cancel() {
	if !s.active {
		return
	}
	s.active = false
	s.apply(s.original)
}

func (s *Sustain[T]) Invoke() bool {
	if s.active || s.final == nil {
		return false
	}
	return s.apply(s.final)
}

func (s *Sustain[T]) Revoke() bool {
	if s.active {
		return false
	}
	return s.apply(s.original)
}
