// Package keynav is the keyboard navigation state machine shared by grid,
// tree, and list widgets, plus the roving-tabindex projection of its state.
package keynav

// Key names as reported by keyboard events.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyHome       = "Home"
	KeyEnd        = "End"
	KeyPageUp     = "PageUp"
	KeyPageDown   = "PageDown"
	KeyEnter      = "Enter"
	KeySpace      = " "
	KeyEscape     = "Escape"
)

// Action is the outcome of a key press.
type Action int

const (
	ActionNone Action = iota
	ActionMove
	ActionCommit
	ActionCancel
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionCommit:
		return "commit"
	case ActionCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Options shape the transition table.
type Options struct {
	// Cols is the grid width. Values below 2 mean a single column.
	Cols int
	// PageRows enables PageUp/PageDown, jumping that many rows.
	PageRows int
	// Vertical ignores ArrowLeft/ArrowRight.
	Vertical bool
	// Escape makes Escape cancel and reset focus to the first item.
	Escape bool
}

// Result is the next state. PreventDefault tells the caller to suppress the
// browser default for the key.
type Result struct {
	Action         Action
	Index          int
	PreventDefault bool
}

// Next computes the transition for key from index over length items. An
// index outside [0, length) is the idle state: movement keys land on the
// first item, or the last for End.
func Next(key string, index, length int, opts Options) Result {
	if length <= 0 {
		return Result{Action: ActionNone, Index: -1}
	}
	cols := opts.Cols
	if cols < 1 {
		cols = 1
	}
	last := length - 1
	idle := index < 0 || index > last

	move := func(i int) Result {
		return Result{Action: ActionMove, Index: i, PreventDefault: true}
	}
	none := Result{Action: ActionNone, Index: index}

	switch key {
	case KeyArrowLeft, KeyArrowRight:
		if opts.Vertical {
			return none
		}
	}
	if idle {
		switch key {
		case KeyArrowLeft, KeyArrowRight, KeyArrowUp, KeyArrowDown, KeyHome, KeyPageUp, KeyPageDown:
			if (key == KeyPageUp || key == KeyPageDown) && opts.PageRows <= 0 {
				return none
			}
			return move(0)
		case KeyEnd:
			return move(last)
		}
	}

	switch key {
	case KeyArrowLeft:
		if index > 0 {
			return move(index - 1)
		}
		return none
	case KeyArrowRight:
		return move(min(index+1, last))
	case KeyArrowUp:
		if index >= cols {
			return move(index - cols)
		}
		return none
	case KeyArrowDown:
		return move(min(index+cols, last))
	case KeyHome:
		return move(0)
	case KeyEnd:
		return move(last)
	case KeyPageUp:
		if opts.PageRows <= 0 {
			return none
		}
		jump := cols * opts.PageRows
		if index >= jump {
			return move(index - jump)
		}
		return move(0)
	case KeyPageDown:
		if opts.PageRows <= 0 {
			return none
		}
		return move(min(index+cols*opts.PageRows, last))
	case KeyEnter, KeySpace:
		if idle {
			return none
		}
		return Result{Action: ActionCommit, Index: index, PreventDefault: true}
	case KeyEscape:
		if !opts.Escape {
			return none
		}
		return Result{Action: ActionCancel, Index: 0, PreventDefault: true}
	}
	return none
}
