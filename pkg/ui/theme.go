package ui

import (
	"appfactory/pkg/types"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type palette struct {
	background tcell.Color
	text       tcell.Color
	border     tcell.Color
	title      tcell.Color
	field      tcell.Color
}

var palettes = map[types.Appearance]palette{
	types.Dark: {
		background: tcell.ColorBlack,
		text:       tcell.ColorWhite,
		border:     tcell.ColorGray,
		title:      tcell.ColorDodgerBlue,
		field:      tcell.ColorDarkSlateGray,
	},
	types.Light: {
		background: tcell.ColorWhite,
		text:       tcell.ColorBlack,
		border:     tcell.ColorDarkGray,
		title:      tcell.ColorNavy,
		field:      tcell.ColorLightGray,
	},
}

func paletteFor(mode types.Appearance) palette {
	if p, ok := palettes[mode]; ok {
		return p
	}
	return palettes[types.Dark]
}

// applyAppearance recolours every owned primitive. tview.Styles is updated
// too so dialogs built later pick up the same palette.
func (ui *UI) applyAppearance(mode types.Appearance) {
	p := paletteFor(mode)

	tview.Styles.PrimitiveBackgroundColor = p.background
	tview.Styles.ContrastBackgroundColor = p.field
	tview.Styles.PrimaryTextColor = p.text
	tview.Styles.BorderColor = p.border
	tview.Styles.TitleColor = p.title

	boxes := []*tview.Box{
		ui.actions.Box,
		ui.appsDropDown.Box,
		ui.promptArea.Box,
		ui.codeArea.Box,
		ui.outputView.Box,
		ui.metricsView.Box,
		ui.statusView.Box,
		ui.keybindView.Box,
	}
	for _, box := range boxes {
		box.SetBackgroundColor(p.background)
		box.SetBorderColor(p.border)
		box.SetTitleColor(p.title)
	}

	textStyle := tcell.StyleDefault.Background(p.background).Foreground(p.text)
	ui.promptArea.SetTextStyle(textStyle)
	ui.codeArea.SetTextStyle(textStyle)
	ui.outputView.SetTextColor(p.text)
	ui.metricsView.SetTextColor(p.text)
	ui.statusView.SetTextColor(p.text)
	ui.keybindView.SetTextColor(p.text)
	ui.actions.SetMainTextColor(p.text)
	ui.appsDropDown.SetFieldBackgroundColor(p.field)
	ui.appsDropDown.SetFieldTextColor(p.text)
}
