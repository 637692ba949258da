package edit

const DefaultHistoryLimit = 256

// History is a linear undo buffer. Recording a new action drops everything
// that was undone.
type History struct {
	// Limit caps the number of recorded actions, zero or less means no cap.
	Limit int

	actions []Action
	index   int // Action the next Undo reverts, -1 when there is none
}

func NewHistory(limit int) *History {
	return &History{Limit: limit, index: -1}
}

// Do invokes a and records it when it changed something.
func (h *History) Do(a Action) bool {
	if a == nil || !a.Invoke() {
		return false
	}
	h.Push(a)
	return true
}

// Push records an action whose effect is already applied, such as a
// completed gesture.
func (h *History) Push(a Action) {
	if a == nil {
		return
	}
	h.index++
	h.actions = append(h.actions[:h.index], a)
	for h.Limit > 0 && len(h.actions) > h.Limit {
		h.actions[0] = nil
		h.actions = h.actions[1:]
		h.index--
	}
}

func (h *History) Undo() bool {
	if h.index < 0 {
		return false
	}
	a := h.actions[h.index]
	h.index--
	a.Revoke()
	return true
}

func (h *History) Redo() bool {
	if h.index+1 >= len(h.actions) {
		return false
	}
	h.index++
	h.actions[h.index].Invoke()
	return true
}

func (h *History) CanUndo() bool {
	return h.index >= 0
}

func (h *History) CanRedo() bool {
	return h.index+1 < len(h.actions)
}

func (h *History) Len() int {
	return len(h.actions)
}

func (h *History) Clear() {
	h.actions = nil
	h.index = -1
}
