package record

// lengthFrame tracks one reserved-but-not-yet-patched length field: the
// buffer offset where the placeholder lives, and the running total of bytes
// written since the reservation.
type lengthFrame struct {
	offset int
	acc    int
}

// LengthStack is a stack of in-flight length reservations, one per nested
// object/array/composite currently open. Every byte written while a frame
// is on top belongs to that frame's declared length; closing the frame
// (Pop) folds its total into whichever frame is now on top, since that
// total itself counts toward the parent's declared length too.
type LengthStack struct {
	frames []lengthFrame
}

// Push opens a new frame at offset with a zero accumulator.
func (s *LengthStack) Push(offset int) {
	s.frames = append(s.frames, lengthFrame{offset: offset})
}

// Add credits n bytes to the current top frame. A no-op if the stack is
// empty (bytes written at the record's own top level don't belong to any
// reserved length field).
func (s *LengthStack) Add(n int) {
	if len(s.frames) == 0 {
		return
	}
	s.frames[len(s.frames)-1].acc += n
}

// Pop closes the top frame, returning its reservation offset and final
// accumulated length, and folds that length into the new top frame (the
// enclosing parent), since the child's full on-wire size — its own 2-byte
// length field plus its content — already counted toward the parent via the
// Add(2) at reservation time and this Add at close time.
func (s *LengthStack) Pop() (offset int, length int) {
	if len(s.frames) == 0 {
		return 0, 0
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.Add(top.acc)
	return top.offset, top.acc
}

// Len reports how many frames are currently open.
func (s *LengthStack) Len() int {
	return len(s.frames)
}
