package arbiter

// stack is an ordered sequence of holders; the last element is the top.
type stack []Holder

func (s stack) empty() bool { return len(s) == 0 }

// top returns the visible holder. The stack must not be empty.
func (s stack) top() Holder { return s[len(s)-1] }

func (s stack) bottom() Holder { return s[0] }

func (s *stack) push(h Holder) { *s = append(*s, h) }

func (s *stack) pop() {
	if len(*s) > 0 {
		*s = (*s)[:len(*s)-1]
	}
}

func (s *stack) reset(h Holder) { *s = append((*s)[:0], h) }

func (s *stack) clear() { *s = (*s)[:0] }

func (s *stack) insertFront(h Holder) {
	*s = append(*s, Holder{})
	copy((*s)[1:], *s)
	(*s)[0] = h
}

func (s *stack) removeAt(i int) {
	*s = append((*s)[:i], (*s)[i+1:]...)
}

// indexOf returns the position of the first holder equal to h, or -1.
func (s stack) indexOf(h Holder) int {
	for i := range s {
		if s[i].same(h) {
			return i
		}
	}
	return -1
}

// holds reports whether app owns any entry of the stack.
func (s stack) holds(app int32) bool {
	for i := range s {
		if s[i].App == app {
			return true
		}
	}
	return false
}

// removeApp drops every holder of app and reports whether the top and the
// bottom were among them.
func (s *stack) removeApp(app int32) (top, bottom bool) {
	if s.empty() {
		return false, false
	}
	top = s.top().App == app
	bottom = s.bottom().App == app

	kept := (*s)[:0]
	for _, h := range *s {
		if h.App != app {
			kept = append(kept, h)
		}
	}
	*s = kept
	return top, bottom
}

func (s stack) clone() stack {
	out := make(stack, len(s))
	copy(out, s)
	return out
}
