package gui

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"screen-region-select/src/display"
	"screen-region-select/src/eventloop"
	"screen-region-select/src/fsm"
	"screen-region-select/src/geometry"
	"screen-region-select/src/input"
	"screen-region-select/src/logutil"
)

const (
	buttonWidth  = 160
	buttonHeight = 40
	buttonLabel  = "Select region"
)

var (
	panelColor       = color.RGBA{R: 0x24, G: 0x26, B: 0x2b, A: 0xff}
	buttonColor      = color.RGBA{R: 0x3a, G: 0x3f, B: 0x4b, A: 0xff}
	buttonHoverColor = color.RGBA{R: 0x4a, G: 0x52, B: 0x63, A: 0xff}
	buttonBorder     = color.RGBA{R: 0x8a, G: 0x93, B: 0xa6, A: 0xff}
	overlayTint      = color.RGBA{A: 0x18}
)

type Options struct {
	Title        string
	OutlineWidth float64
	Outline      color.RGBA
}

// Chrome returns the fsm.Chrome that reconfigures the ebiten window.
func Chrome() fsm.Chrome { return windowChrome{} }

type windowChrome struct{}

func (windowChrome) Apply(c fsm.WindowChrome) {
	ebiten.SetWindowDecorated(c.Decorated)
	ebiten.SetWindowFloating(c.AlwaysOnTop)
	if c.Fullscreen {
		if v, err := display.Virtual(); err == nil {
			logutil.Debugf("gui: overlay on primary display, virtual screen %v", v)
		}
		ebiten.SetFullscreen(true)
		return
	}
	ebiten.SetFullscreen(false)
	if c.Width > 0 && c.Height > 0 {
		ebiten.SetWindowSize(c.Width, c.Height)
	}
	if c.Centered {
		bounds, err := display.Primary()
		if err != nil {
			logutil.Warnf("gui: cannot centre window: %v", err)
			return
		}
		p := display.CenterIn(bounds, c.Width, c.Height)
		ebiten.SetWindowPosition(p.X, p.Y)
	}
}

// pointer reads the left mouse button through ebiten's per-frame input state.
type pointer struct{}

func (pointer) Pressed() bool { return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) }
func (pointer) JustPressed() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}
func (pointer) JustReleased() bool {
	return inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}
func (pointer) Position() (int, int) { return ebiten.CursorPosition() }

type game struct {
	ctx     context.Context
	loop    *eventloop.Loop
	opts    Options
	src     pointer
	tracker input.Tracker
	button  input.Button
	w, h    int
}

func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	case <-g.loop.Done():
		return ebiten.Termination
	default:
	}

	activated := false
	if g.loop.State() == fsm.StateDefault {
		activated = g.button.Clicked(g.src)
	}
	g.loop.Tick(g.tracker.Sample(g.src, activated))
	if g.loop.Transitioned() {
		g.tracker.Reset()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	switch g.loop.State() {
	case fsm.StateSelectRegion:
		screen.Fill(overlayTint)
		if r, ok := g.loop.InProgress(); ok {
			vector.StrokeRect(screen,
				float32(r.Min.X), float32(r.Min.Y),
				float32(r.Width()), float32(r.Height()),
				float32(g.opts.OutlineWidth), g.opts.Outline, false)
		}
	default:
		g.drawLauncher(screen)
	}
}

func (g *game) drawLauncher(screen *ebiten.Image) {
	// The window is created transparent; the launcher paints its own background.
	screen.Fill(panelColor)

	a := g.button.Area
	fill := buttonColor
	x, y := g.src.Position()
	if a.Contains(geometry.Point{X: float64(x), Y: float64(y)}) {
		fill = buttonHoverColor
	}
	vector.DrawFilledRect(screen, float32(a.Min.X), float32(a.Min.Y), float32(a.Width()), float32(a.Height()), fill, false)
	vector.StrokeRect(screen, float32(a.Min.X), float32(a.Min.Y), float32(a.Width()), float32(a.Height()), 1, buttonBorder, false)
	// Debug font glyphs are 6x16.
	tx := int(a.Min.X) + (int(a.Width())-6*len(g.button.Label))/2
	ty := int(a.Min.Y) + (int(a.Height())-16)/2
	ebitenutil.DebugPrintAt(screen, g.button.Label, tx, ty)

	if last, ok := g.loop.LastReport(); ok {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("last: %s", last.Text()), 8, g.h-20)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.button = input.CenteredButton(buttonLabel, g.w, g.h, buttonWidth, buttonHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and drives loop once per frame until ctx ends, the
// window is closed or the loop reports Done. It must run on the main goroutine.
func Run(ctx context.Context, loop *eventloop.Loop, opts Options, launcherWidth, launcherHeight int) error {
	if opts.Title == "" {
		opts.Title = "Region Select"
	}
	if opts.OutlineWidth <= 0 {
		opts.OutlineWidth = 1
	}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(launcherWidth, launcherHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	// Hotkey and tray triggers must be seen while another window has focus.
	ebiten.SetRunnableOnUnfocused(true)

	g := &game{ctx: ctx, loop: loop, opts: opts}
	logutil.Debugf("gui: starting window %dx%d", launcherWidth, launcherHeight)
	return ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{ScreenTransparent: true})
}
