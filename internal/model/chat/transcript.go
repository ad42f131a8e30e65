package chat

// Transcript is the ordered, append-only record of turns for one session.
// Turns are stored by value so callers can never mutate an appended turn.
type Transcript struct {
	turns []Turn
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{turns: make([]Turn, 0, 16)}
}

// Append adds a turn at the end.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Reset discards every turn and seeds the transcript with the given ones.
func (t *Transcript) Reset(seed ...Turn) {
	t.turns = append(make([]Turn, 0, 16), seed...)
}

// Len reports the number of turns.
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.turns)
}

// Turns returns a copy of the turns in order.
func (t *Transcript) Turns() []Turn {
	if t == nil {
		return nil
	}
	copied := make([]Turn, len(t.turns))
	copy(copied, t.turns)
	return copied
}

// Last returns the most recent turn.
func (t *Transcript) Last() (Turn, bool) {
	if t.Len() == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}
