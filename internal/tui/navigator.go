package tui

// Screen identifies one view of the interactive resolver.
type Screen int

const (
	// ScreenConflictList is the top-level list of detected conflicts.
	ScreenConflictList Screen = iota
	// ScreenConflictDetail shows one conflict's drifted fields.
	ScreenConflictDetail
	// ScreenDiff shows the side-by-side state comparison.
	ScreenDiff
	// ScreenMergePreview shows an auto-merge candidate before accepting.
	ScreenMergePreview
	// ScreenConfirm is the final review before the session is applied.
	ScreenConfirm
)

func (s Screen) String() string {
	switch s {
	case ScreenConflictList:
		return "conflicts"
	case ScreenConflictDetail:
		return "detail"
	case ScreenDiff:
		return "diff"
	case ScreenMergePreview:
		return "merge"
	case ScreenConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Navigator is a screen stack: pushing descends into a view, popping
// returns to the previous one. The root screen can never be popped, so
// Current is always valid.
type Navigator struct {
	stack []Screen
}

// NewNavigator creates a navigator rooted at the given screen.
func NewNavigator(root Screen) *Navigator {
	return &Navigator{stack: []Screen{root}}
}

// Current returns the screen on top of the stack.
func (n *Navigator) Current() Screen {
	return n.stack[len(n.stack)-1]
}

// Push descends into a screen.
func (n *Navigator) Push(s Screen) {
	n.stack = append(n.stack, s)
}

// Pop returns to the previous screen. Popping at the root is a no-op.
func (n *Navigator) Pop() Screen {
	if len(n.stack) > 1 {
		n.stack = n.stack[:len(n.stack)-1]
	}
	return n.Current()
}

// AtRoot reports whether the root screen is showing.
func (n *Navigator) AtRoot() bool {
	return len(n.stack) == 1
}

// Depth returns the number of screens on the stack.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Reset drops the whole stack and re-roots the navigator.
func (n *Navigator) Reset(root Screen) {
	n.stack = n.stack[:0]
	n.stack = append(n.stack, root)
}
