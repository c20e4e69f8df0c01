package driver

import "github.com/ayusman/panicpoppers/internal/game"

// Event is a discrete input signal from the keyboard, terminal or tray menu.
type Event int

const (
	// EventStart leaves the splash screen and starts a session.
	EventStart Event = iota + 1
	// EventRestart starts a new session from the game-over screen.
	EventRestart
	// EventSplash returns from the game-over screen to the splash screen.
	EventSplash
	// EventQuit stops the frame loop.
	EventQuit
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventRestart:
		return "restart"
	case EventSplash:
		return "splash"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// KeyEvent maps the game's keyboard layout to an event: SPACE starts, R
// restarts, S shows the splash screen, Q and ESC quit.
func KeyEvent(key rune) (Event, bool) {
	switch key {
	case ' ':
		return EventStart, true
	case 'r', 'R':
		return EventRestart, true
	case 's', 'S':
		return EventSplash, true
	case 'q', 'Q', 27:
		return EventQuit, true
	default:
		return 0, false
	}
}

// Listener observes a driver. Methods run on the frame loop goroutine and
// must not block.
type Listener interface {
	// OnContact is called after a frame in which at least one target was popped.
	OnContact(res game.ContactResult)
	// OnPhase is called after every phase change.
	OnPhase(from, to game.Phase, snap Snapshot)
	// OnFrame is called once per rendered frame.
	OnFrame(snap Snapshot)
}
