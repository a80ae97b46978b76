package navigation

// Key names a key the way the shell reports it ("ArrowDown", "PageUp",
// " ", "q", ...).
type Key string

const (
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyPageDown   Key = "PageDown"
	KeyPageUp     Key = "PageUp"
	KeyHome       Key = "Home"
	KeyEnd        Key = "End"
	KeySpace      Key = " "
)

// KeyEvent is one key press.
type KeyEvent struct {
	Key  Key
	Ctrl bool
}

// Action is what a key press asks the shell to do.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrevious
	ActionFirst
	ActionLast
	ActionExport
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionPrevious:
		return "previous"
	case ActionFirst:
		return "first"
	case ActionLast:
		return "last"
	case ActionExport:
		return "export"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// ActionFor maps a key press to an action.
func ActionFor(ev KeyEvent) Action {
	if ev.Ctrl {
		switch ev.Key {
		case "e", "E":
			return ActionExport
		case "c", "C":
			return ActionQuit
		}
		return ActionNone
	}
	switch ev.Key {
	case KeyArrowDown, KeyArrowRight, KeyPageDown, KeySpace:
		return ActionNext
	case KeyArrowUp, KeyArrowLeft, KeyPageUp:
		return ActionPrevious
	case KeyHome:
		return ActionFirst
	case KeyEnd:
		return ActionLast
	case "q", "Q":
		return ActionQuit
	}
	return ActionNone
}

// Shell is the keyboard surface over a Controller. It clamps targets to the
// deck before scrolling and hands export requests to Export.
type Shell struct {
	Controller *Controller
	Count      int
	Export     func()
}

// HandleKey applies a key press and returns the action it mapped to.
func (s *Shell) HandleKey(ev KeyEvent) Action {
	action := ActionFor(ev)
	current := s.Controller.CurrentIndex()

	switch action {
	case ActionNext:
		s.Goto(current + 1)
	case ActionPrevious:
		s.Goto(current - 1)
	case ActionFirst:
		s.Goto(0)
	case ActionLast:
		s.Goto(s.Count - 1)
	case ActionExport:
		if s.Export != nil {
			s.Export()
		}
	}
	return action
}

// Goto scrolls to index after clamping it to the deck.
func (s *Shell) Goto(index int) {
	s.Controller.ScrollTo(Clamp(index, s.Count))
}
