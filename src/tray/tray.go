package tray

import (
	"image/color"
	"runtime"
	"sync"

	"github.com/getlantern/systray"

	"screen-region-select/src/logutil"
)

const title = "Region Select"

// Callbacks are invoked from the tray goroutine.
type Callbacks struct {
	OnSelect   func()
	OnCopyLast func()
	OnQuit     func()
}

type Tray struct {
	cb      Callbacks
	outline color.RGBA

	mu       sync.Mutex
	ready    bool
	lastText string
	mCopy    *systray.MenuItem
}

func New(cb Callbacks, outline color.RGBA) *Tray {
	return &Tray{cb: cb, outline: outline}
}

// Run blocks in the systray message loop; call it from its own goroutine.
func (t *Tray) Run() {
	runtime.LockOSThread()
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the systray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetLastSelection updates the tooltip and enables the copy item.
func (t *Tray) SetLastSelection(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastText = text
	if !t.ready {
		return
	}
	systray.SetTooltip(tooltipFor(text))
	t.mCopy.Enable()
}

func tooltipFor(last string) string {
	if last == "" {
		return title
	}
	return title + " (last: " + last + ")"
}

func (t *Tray) onReady() {
	if icon := iconPNG(t.outline); icon != nil {
		systray.SetIcon(icon)
	}
	systray.SetTitle(title)

	mSelect := systray.AddMenuItem("Select region", "Start a region selection")
	mCopy := systray.AddMenuItem("Copy last selection", "Copy the last committed rectangle")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	t.mu.Lock()
	t.mCopy = mCopy
	t.ready = true
	systray.SetTooltip(tooltipFor(t.lastText))
	if t.lastText == "" {
		mCopy.Disable()
	}
	t.mu.Unlock()
	logutil.Debugf("tray: ready")

	go func() {
		for {
			select {
			case <-mSelect.ClickedCh:
				if t.cb.OnSelect != nil {
					t.cb.OnSelect()
				}
			case <-mCopy.ClickedCh:
				if t.cb.OnCopyLast != nil {
					t.cb.OnCopyLast()
				}
			case <-mQuit.ClickedCh:
				logutil.Infof("tray: quit requested")
				if t.cb.OnQuit != nil {
					t.cb.OnQuit()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.mu.Lock()
	t.ready = false
	t.mu.Unlock()
}
