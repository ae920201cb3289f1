package gui

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Terminal safe color palette is available here
// Themes should be limited to the colors defined in this reference
// https://upload.wikimedia.org/wikipedia/commons/1/15/Xterm_256color_chart.svg

// Theme is used for dynamically coloring the UI
type Theme struct {
	Name         string      `json:"name"`
	MoveLabelBg  tcell.Color `json:"moveLabelBg"`
	MoveLabelFg  tcell.Color `json:"moveLabelFg"`
	SquareDark   tcell.Color `json:"squareDark"`
	SquareLight  tcell.Color `json:"squareLight"`
	SquareHigh   tcell.Color `json:"squareHigh"`
	SquareHint   tcell.Color `json:"squareHint"`
	SquareCheck  tcell.Color `json:"squareCheck"`
	SquareBattle tcell.Color `json:"squareBattle"`
	White        tcell.Color `json:"white"`
	Black        tcell.Color `json:"black"`
	Msg          tcell.Color `json:"msg"`
	Rank         tcell.Color `json:"rank"`
	File         tcell.Color `json:"file"`
	MoveBox      tcell.Color `json:"moveBox"`
	CameraLocked tcell.Color `json:"cameraLocked"`
	CameraFree   tcell.Color `json:"cameraFree"`
}

// ThemeHex is the config file form of a Theme
type ThemeHex struct {
	Name         string `json:"name"`
	MoveLabelBg  string `json:"moveLabelBg"`
	MoveLabelFg  string `json:"moveLabelFg"`
	SquareDark   string `json:"squareDark"`
	SquareLight  string `json:"squareLight"`
	SquareHigh   string `json:"squareHigh"`
	SquareHint   string `json:"squareHint"`
	SquareCheck  string `json:"squareCheck"`
	SquareBattle string `json:"squareBattle"`
	White        string `json:"white"`
	Black        string `json:"black"`
	Msg          string `json:"msg"`
	Rank         string `json:"rank"`
	File         string `json:"file"`
	MoveBox      string `json:"moveBox"`
	CameraLocked string `json:"cameraLocked"`
	CameraFree   string `json:"cameraFree"`
}

// fmtHex returns a one character hex for the ColorDefault
// and otherwise it returns a standard hex. This is useful
// because it allows ColorDefault to be imported from the config
// and parsed properly rather than being interpreted as black
func fmtHex(v int32) string {
	if v == -1 {
		return "#0"
	}
	return fmt.Sprintf("#%06x", v)
}

// Hex converts a Theme to a ThemeHex
func (t Theme) Hex() ThemeHex {
	return ThemeHex{
		Name:         t.Name,
		MoveLabelBg:  fmtHex(t.MoveLabelBg.Hex()),
		MoveLabelFg:  fmtHex(t.MoveLabelFg.Hex()),
		SquareDark:   fmtHex(t.SquareDark.Hex()),
		SquareLight:  fmtHex(t.SquareLight.Hex()),
		SquareHigh:   fmtHex(t.SquareHigh.Hex()),
		SquareHint:   fmtHex(t.SquareHint.Hex()),
		SquareCheck:  fmtHex(t.SquareCheck.Hex()),
		SquareBattle: fmtHex(t.SquareBattle.Hex()),
		White:        fmtHex(t.White.Hex()),
		Black:        fmtHex(t.Black.Hex()),
		Msg:          fmtHex(t.Msg.Hex()),
		Rank:         fmtHex(t.Rank.Hex()),
		File:         fmtHex(t.File.Hex()),
		MoveBox:      fmtHex(t.MoveBox.Hex()),
		CameraLocked: fmtHex(t.CameraLocked.Hex()),
		CameraFree:   fmtHex(t.CameraFree.Hex()),
	}
}

// Theme converts a ThemeHex to a Theme
func (t ThemeHex) Theme() Theme {
	return Theme{
		Name:         t.Name,
		MoveLabelBg:  tcell.GetColor(t.MoveLabelBg),
		MoveLabelFg:  tcell.GetColor(t.MoveLabelFg),
		SquareDark:   tcell.GetColor(t.SquareDark),
		SquareLight:  tcell.GetColor(t.SquareLight),
		SquareHigh:   tcell.GetColor(t.SquareHigh),
		SquareHint:   tcell.GetColor(t.SquareHint),
		SquareCheck:  tcell.GetColor(t.SquareCheck),
		SquareBattle: tcell.GetColor(t.SquareBattle),
		White:        tcell.GetColor(t.White),
		Black:        tcell.GetColor(t.Black),
		Msg:          tcell.GetColor(t.Msg),
		Rank:         tcell.GetColor(t.Rank),
		File:         tcell.GetColor(t.File),
		MoveBox:      tcell.GetColor(t.MoveBox),
		CameraLocked: tcell.GetColor(t.CameraLocked),
		CameraFree:   tcell.GetColor(t.CameraFree),
	}
}

// ImportThemes returns a converted Theme from a slice of ThemeHex
// entities if its name matches the want argument
func ImportThemes(want string, themes []ThemeHex) (Theme, error) {
	for _, t := range themes {
		if t.Name == want {
			return t.Theme(), nil
		}
	}
	return Theme{}, errors.New("theme: no theme found")
}

// ThemeBasic is the default theme
var ThemeBasic = Theme{
	Name:         "basic",
	MoveLabelBg:  tcell.Color252,
	MoveLabelFg:  tcell.ColorBlack,
	SquareDark:   tcell.Color188,
	SquareLight:  tcell.Color230,
	SquareHigh:   tcell.Color226,
	SquareHint:   tcell.Color223,
	SquareCheck:  tcell.Color218,
	SquareBattle: tcell.Color203,
	White:        tcell.Color232,
	Black:        tcell.Color232,
	Msg:          tcell.Color160,
	Rank:         tcell.Color247,
	File:         tcell.Color247,
	MoveBox:      tcell.ColorDefault,
	CameraLocked: tcell.Color167,
	CameraFree:   tcell.Color122,
}
