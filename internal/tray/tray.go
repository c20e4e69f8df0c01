// Package tray puts the game controls in the system tray menu.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
)

// menu is the subset of a systray menu item the tray updates.
type menu interface {
	SetTitle(title string)
}

// Tray forwards menu clicks to a driver as events and shows the result of
// the last session.
type Tray struct {
	events chan<- driver.Event

	mu       sync.Mutex
	last     string
	menuLast menu
}

var _ driver.Listener = (*Tray)(nil)

// New creates a Tray that sends clicks on events.
func New(events chan<- driver.Event) *Tray {
	return &Tray{
		events: events,
		last:   "Last: none",
	}
}

// Run starts the tray and blocks until Quit is clicked or Stop is called.
// ready runs on its own goroutine once the menu exists.
func (t *Tray) Run(ready func()) {
	systray.Run(func() {
		t.onReady()
		if ready != nil {
			go ready()
		}
	}, nil)
}

// Stop removes the tray icon and makes Run return.
func (t *Tray) Stop() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Poppers")
	systray.SetTooltip("Panic Poppers")

	menuStart := systray.AddMenuItem("Start", "Start a session from the splash screen")
	menuRestart := systray.AddMenuItem("Restart", "Start a new session")
	menuSplash := systray.AddMenuItem("Splash Screen", "Return to the splash screen")
	systray.AddSeparator()

	menuLast := systray.AddMenuItem("", "Result of the last session")
	menuLast.Disable()
	t.mu.Lock()
	t.menuLast = menuLast
	menuLast.SetTitle(t.last)
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Panic Poppers")

	go func() {
		for {
			select {
			case <-menuStart.ClickedCh:
				t.send(driver.EventStart)
			case <-menuRestart.ClickedCh:
				t.send(driver.EventRestart)
			case <-menuSplash.ClickedCh:
				t.send(driver.EventSplash)
			case <-menuQuit.ClickedCh:
				t.send(driver.EventQuit)
				return
			}
		}
	}()
}

// send never blocks the menu goroutine; a full queue drops the click.
func (t *Tray) send(ev driver.Event) {
	select {
	case t.events <- ev:
	default:
	}
}

// Last returns the text of the last-session menu item.
func (t *Tray) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *Tray) OnContact(game.ContactResult) {}

func (t *Tray) OnFrame(driver.Snapshot) {}

func (t *Tray) OnPhase(_, to game.Phase, snap driver.Snapshot) {
	var title string
	switch to {
	case game.Playing:
		title = "Last: playing..."
	case game.Over:
		title = fmt.Sprintf("Last: %s, score %d", snap.Outcome, snap.Score)
	default:
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = title
	if t.menuLast != nil {
		t.menuLast.SetTitle(title)
	}
}
