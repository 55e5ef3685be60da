package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"appfactory/pkg/config"
	"appfactory/pkg/factory"
	"appfactory/pkg/system"
	"appfactory/pkg/types"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	mainPage     = "main"
	savePage     = "save"
	exportPage   = "export"
	settingsPage = "settings"
)

type UI struct {
	app          *tview.Application
	pages        *tview.Pages
	actions      *tview.List
	appsDropDown *tview.DropDown
	promptArea   *tview.TextArea
	codeArea     *tview.TextArea
	outputView   *tview.TextView
	metricsView  *tview.TextView
	statusView   *tview.TextView
	keybindView  *tview.TextView

	focusables []tview.Primitive
	focusIndex int

	keybinds            []types.KeyBinding
	spinnerFrames       []string
	currentSpinnerFrame int
	stopSpinner         chan struct{}

	ctrl     *factory.Controller
	settings *config.Settings
	metrics  *system.Metrics
}

func New(ctrl *factory.Controller, settings *config.Settings, metrics *system.Metrics) *UI {
	ui := &UI{
		app:           tview.NewApplication(),
		spinnerFrames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		stopSpinner:   make(chan struct{}),
		ctrl:          ctrl,
		settings:      settings,
		metrics:       metrics,
	}

	ui.keybinds = []types.KeyBinding{
		{Key: "Ctrl+G", Description: "generate"},
		{Key: "Ctrl+R", Description: "run"},
		{Key: "Ctrl+S", Description: "save app"},
		{Key: "Ctrl+E", Description: "export"},
		{Key: "Ctrl+Y", Description: "copy code"},
		{Key: "Ctrl+L", Description: "load selected"},
		{Key: "Ctrl+O", Description: "settings"},
		{Key: "Tab", Description: "next pane"},
		{Key: "Ctrl+N", Description: "leave editor"},
		{Key: "Ctrl+Q", Description: "quit"},
	}

	ui.setupViews()
	ui.setupLayout()
	ui.app.SetInputCapture(ui.handleKey)

	cfg := settings.Current()
	metrics.SetKeyConfigured(cfg.APIKey != "")
	ui.applyAppearance(cfg.Appearance)

	// settings are only updated from the event loop, so no QueueUpdate here
	settings.Subscribe(func(c config.Config) {
		ui.metrics.SetKeyConfigured(c.APIKey != "")
		ui.applyAppearance(c.Appearance)
		ui.renderMetrics()
	})
	ctrl.OnStatus(func(types.Status) {
		go ui.app.QueueUpdateDraw(ui.renderStatus)
	})
	return ui
}

func (ui *UI) setupViews() {
	ui.actions = tview.NewList().ShowSecondaryText(false)
	ui.actions.
		AddItem("Generate App", "", 'g', ui.generate).
		AddItem("Run Code", "", 'r', ui.run).
		AddItem("Save App", "", 's', ui.openSaveDialog).
		AddItem("Export .py", "", 'e', ui.openExportDialog).
		AddItem("Copy Code", "", 'y', ui.copyCode).
		AddItem("Load App", "", 'l', ui.loadSelected).
		AddItem("Refresh Apps", "", 'f', func() { ui.refreshApps("") }).
		AddItem("Settings", "", 'o', ui.openSettingsDialog).
		AddItem("Quit", "", 'q', ui.app.Stop)
	ui.actions.SetBorder(true).
		SetTitle("AI App Factory").
		SetTitleAlign(tview.AlignLeft)

	ui.appsDropDown = tview.NewDropDown()
	ui.appsDropDown.SetBorder(true).
		SetTitle("Saved Apps").
		SetTitleAlign(tview.AlignLeft)

	ui.metricsView = tview.NewTextView().
		SetDynamicColors(true)
	ui.metricsView.SetBorder(true).
		SetTitle("System").
		SetTitleAlign(tview.AlignLeft)

	ui.statusView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	ui.promptArea = tview.NewTextArea().
		SetPlaceholder("Describe the app you want...")
	ui.promptArea.SetBorder(true).
		SetTitle("App Description").
		SetTitleAlign(tview.AlignLeft)

	ui.codeArea = tview.NewTextArea()
	ui.codeArea.SetBorder(true).
		SetTitle("Generated Code").
		SetTitleAlign(tview.AlignLeft)

	ui.outputView = tview.NewTextView().
		SetScrollable(true).
		SetWordWrap(true)
	ui.outputView.SetBorder(true).
		SetTitle("Output Console").
		SetTitleAlign(tview.AlignLeft)

	ui.keybindView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft).
		SetWordWrap(true)

	ui.focusables = []tview.Primitive{
		ui.promptArea,
		ui.codeArea,
		ui.outputView,
		ui.actions,
		ui.appsDropDown,
	}
}

// handleKey runs the global shortcuts while no dialog is open. Tab inside
// the code editor is passed through so it can be typed; Ctrl+N always moves
// to the next pane.
func (ui *UI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if name, _ := ui.pages.GetFrontPage(); name != mainPage {
		return event
	}

	switch event.Key() {
	case tcell.KeyCtrlG:
		ui.generate()
	case tcell.KeyCtrlR:
		ui.run()
	case tcell.KeyCtrlS:
		ui.openSaveDialog()
	case tcell.KeyCtrlE:
		ui.openExportDialog()
	case tcell.KeyCtrlY:
		ui.copyCode()
	case tcell.KeyCtrlL:
		ui.loadSelected()
	case tcell.KeyCtrlO:
		ui.openSettingsDialog()
	case tcell.KeyCtrlQ:
		ui.app.Stop()
	case tcell.KeyCtrlN:
		ui.cycleFocus(1)
	case tcell.KeyTab:
		if ui.app.GetFocus() == ui.codeArea {
			return event
		}
		ui.cycleFocus(1)
	case tcell.KeyBacktab:
		if ui.app.GetFocus() == ui.codeArea {
			return event
		}
		ui.cycleFocus(-1)
	default:
		return event
	}
	return nil
}

func (ui *UI) cycleFocus(step int) {
	current := ui.app.GetFocus()
	for i, p := range ui.focusables {
		if p == current {
			ui.focusIndex = i
			break
		}
	}
	n := len(ui.focusables)
	ui.focusIndex = ((ui.focusIndex+step)%n + n) % n
	ui.app.SetFocus(ui.focusables[ui.focusIndex])
}

// pushBuffers copies the editable widgets into the controller.
func (ui *UI) pushBuffers() {
	ui.ctrl.SetPrompt(ui.promptArea.GetText())
	ui.ctrl.SetCode(ui.codeArea.GetText())
}

// pullBuffers copies the controller's buffers back into the widgets.
func (ui *UI) pullBuffers() {
	ui.promptArea.SetText(ui.ctrl.Prompt(), false)
	ui.codeArea.SetText(ui.ctrl.Code(), false)
	ui.renderOutput()
}

func (ui *UI) generate() {
	ui.pushBuffers()
	ui.outputView.Clear()

	go func() {
		start := time.Now()
		err := ui.ctrl.Generate(context.Background())
		if err == nil {
			ui.metrics.SetLastGeneration(time.Since(start))
		}
		ui.app.QueueUpdateDraw(func() {
			if err == nil {
				ui.codeArea.SetText(ui.ctrl.Code(), false)
			}
			ui.renderOutput()
			ui.renderMetrics()
			ui.renderStatus()
		})
	}()
}

func (ui *UI) run() {
	ui.ctrl.SetCode(ui.codeArea.GetText())
	// launch failures are logged by the controller
	_, _ = ui.ctrl.Run()
	ui.renderStatus()
}

func (ui *UI) copyCode() {
	ui.ctrl.SetCode(ui.codeArea.GetText())
	_ = ui.ctrl.Copy()
	ui.renderOutput()
	ui.renderStatus()
}

func (ui *UI) loadSelected() {
	_, name := ui.appsDropDown.GetCurrentOption()
	if name == "" || name == factory.NoSavedApps {
		return
	}
	if err := ui.ctrl.Load(name); err != nil {
		ui.renderOutput()
		ui.renderStatus()
		return
	}
	ui.pullBuffers()
	ui.renderStatus()
}

// refreshApps reloads the drop-down and selects want when present.
func (ui *UI) refreshApps(want string) {
	names, _ := ui.ctrl.Apps()
	ui.appsDropDown.SetOptions(names, nil)

	selected := 0
	for i, name := range names {
		if name == want {
			selected = i
			break
		}
	}
	ui.appsDropDown.SetCurrentOption(selected)
	ui.renderOutput()
}

func (ui *UI) openSaveDialog() {
	form := tview.NewForm()
	form.AddInputField("Name", "", 40, nil, nil)
	form.AddButton("Save", func() {
		name := form.GetFormItemByLabel("Name").(*tview.InputField).GetText()
		ui.closeDialog(savePage)

		ui.pushBuffers()
		if err := ui.ctrl.Save(name); err == nil && name != "" {
			ui.refreshApps(name)
		}
		ui.renderOutput()
		ui.renderStatus()
	})
	form.AddButton("Cancel", func() { ui.closeDialog(savePage) })
	ui.showDialog(savePage, "Save App", form, 56, 7)
}

func (ui *UI) openExportDialog() {
	form := tview.NewForm()
	form.AddInputField("Path", "app.py", 50, nil, nil)
	form.AddButton("Export", func() {
		path := form.GetFormItemByLabel("Path").(*tview.InputField).GetText()
		ui.closeDialog(exportPage)

		ui.ctrl.SetCode(ui.codeArea.GetText())
		_, _ = ui.ctrl.Export(path)
		ui.renderOutput()
		ui.renderStatus()
	})
	form.AddButton("Cancel", func() { ui.closeDialog(exportPage) })
	ui.showDialog(exportPage, "Export .py", form, 66, 7)
}

func (ui *UI) openSettingsDialog() {
	cfg := ui.settings.Current()
	modes := []string{string(types.Dark), string(types.Light)}
	initial := 0
	if cfg.Appearance == types.Light {
		initial = 1
	}

	form := tview.NewForm()
	form.AddDropDown("Appearance", modes, initial, nil)
	form.AddPasswordField("Groq API Key", cfg.APIKey, 40, '*', nil)
	form.AddButton("Save Settings", func() {
		_, mode := form.GetFormItemByLabel("Appearance").(*tview.DropDown).GetCurrentOption()
		key := form.GetFormItemByLabel("Groq API Key").(*tview.InputField).GetText()
		ui.closeDialog(settingsPage)

		_ = ui.ctrl.ApplySettings(config.Config{APIKey: key, Appearance: types.Appearance(mode)})
		ui.renderOutput()
		ui.renderStatus()
	})
	form.AddButton("Cancel", func() { ui.closeDialog(settingsPage) })
	ui.showDialog(settingsPage, "Settings", form, 60, 9)
}

func (ui *UI) showDialog(name, title string, form *tview.Form, width, height int) {
	form.SetBorder(true).
		SetTitle(title).
		SetTitleAlign(tview.AlignLeft)
	form.SetCancelFunc(func() { ui.closeDialog(name) })

	ui.pages.AddPage(name, center(form, width, height), true, true)
	ui.app.SetFocus(form)
}

func (ui *UI) closeDialog(name string) {
	ui.pages.RemovePage(name)
	ui.app.SetFocus(ui.focusables[ui.focusIndex])
}

func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(
			tview.NewFlex().
				SetDirection(tview.FlexRow).
				AddItem(nil, 0, 1, false).
				AddItem(p, height, 0, true).
				AddItem(nil, 0, 1, false),
			width, 0, true,
		).
		AddItem(nil, 0, 1, false)
}

func (ui *UI) renderOutput() {
	ui.outputView.SetText(ui.ctrl.Output())
}

func (ui *UI) renderMetrics() {
	ui.metricsView.Clear()
	fmt.Fprint(ui.metricsView, ui.metrics.GetFormattedMetrics())
}

func (ui *UI) renderStatus() {
	ui.statusView.SetText(statusText(ui.ctrl.Status(), ui.spinnerFrames[ui.currentSpinnerFrame]))
}

// statusText formats the status line; the spinner frame is only shown while
// an action is in progress.
func statusText(s types.Status, frame string) string {
	text := tview.Escape(s.Text)
	if s.State == types.InProgress {
		text += " " + frame
	}
	return fmt.Sprintf("[%s]%s[-]", s.Color, text)
}

func (ui *UI) updateKeybindDisplay() {
	ui.keybindView.Clear()
	fmt.Fprint(ui.keybindView, keybindGrid(ui.keybinds, 3))
}

// keybindGrid lays out binds in rows of perRow, padded into aligned columns.
func keybindGrid(binds []types.KeyBinding, perRow int) string {
	maxKeyWidth := 0
	maxDescWidth := 0
	for _, bind := range binds {
		if len(bind.Key) > maxKeyWidth {
			maxKeyWidth = len(bind.Key)
		}
		if len(bind.Description) > maxDescWidth {
			maxDescWidth = len(bind.Description)
		}
	}

	var b strings.Builder
	for i := 0; i < len(binds); i += perRow {
		for j := 0; j < perRow && i+j < len(binds); j++ {
			bind := binds[i+j]
			keyPadding := strings.Repeat(" ", maxKeyWidth-len(bind.Key))
			descPadding := strings.Repeat(" ", maxDescWidth-len(bind.Description))

			fmt.Fprintf(&b, "[green]%s%s[-]:%s%s", bind.Key, keyPadding, bind.Description, descPadding)
			if j < perRow-1 && i+j < len(binds)-1 {
				b.WriteString("    ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (ui *UI) setupLayout() {
	sidebar := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.actions, 11, 0, true).
		AddItem(ui.appsDropDown, 3, 0, false).
		AddItem(nil, 0, 1, false).
		AddItem(ui.metricsView, 6, 0, false).
		AddItem(ui.statusView, 1, 0, false)

	editor := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.promptArea, 0, 2, true).
		AddItem(ui.codeArea, 0, 5, false).
		AddItem(ui.outputView, 5, 0, false)

	body := tview.NewFlex().
		AddItem(sidebar, 30, 0, false).
		AddItem(editor, 0, 1, true)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(ui.keybindView, 4, 0, false)

	ui.pages = tview.NewPages().
		AddPage(mainPage, root, true, true)
}

func (ui *UI) Run() error {
	ui.updateKeybindDisplay()
	ui.refreshApps("")
	ui.renderMetrics()
	ui.renderStatus()

	ui.metrics.Start(func() {
		ui.app.QueueUpdateDraw(ui.renderMetrics)
	})
	defer ui.metrics.Stop()

	ui.startSpinner()
	defer close(ui.stopSpinner)

	return ui.app.SetRoot(ui.pages, true).SetFocus(ui.promptArea).EnableMouse(true).Run()
}

// startSpinner advances the status spinner while an action is in progress,
// until stopSpinner is closed. The returned channel closes when it exits.
func (ui *UI) startSpinner() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ui.stopSpinner:
				return
			case <-ticker.C:
				if ui.ctrl.Status().State != types.InProgress {
					continue
				}
				ui.app.QueueUpdateDraw(func() {
					ui.currentSpinnerFrame = (ui.currentSpinnerFrame + 1) % len(ui.spinnerFrames)
					ui.renderStatus()
				})
			}
		}
	}()
	return done
}
