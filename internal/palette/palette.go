// Package palette holds the raw ANSI escape sequences used by mdterm themes.
package palette

import "strconv"

// SGR attribute sequences.
const (
	Reset     = "\x1b[0m"
	Bold      = "\x1b[1m"
	Dim       = "\x1b[2m"
	Italic    = "\x1b[3m"
	Underline = "\x1b[4m"
	Strike    = "\x1b[9m"
)

// Basic 16-color foregrounds.
const (
	Red     = "\x1b[31m"
	Green   = "\x1b[32m"
	Yellow  = "\x1b[33m"
	Blue    = "\x1b[34m"
	Magenta = "\x1b[35m"
	Cyan    = "\x1b[36m"
	Gray    = "\x1b[90m"
)

// Palette maps semantic roles to foreground sequences. Attributes such as
// bold or italic are added by the theme, not the palette.
type Palette struct {
	Text       string
	H1         string
	H2         string
	H3         string
	H4         string
	H5         string
	H6         string
	Emphasis   string
	Strong     string
	Strike     string
	CodeInline string
	CodeBorder string
	Quote      string
	ListMarker string
	LinkText   string
	LinkURL    string
	Rule       string
	Error      string
	Notice     string
	Prompt     string
}

func rgb(r, g, b int) string {
	return "\x1b[38;2;" + strconv.Itoa(r) + ";" + strconv.Itoa(g) + ";" + strconv.Itoa(b) + "m"
}

// PaletteDefault uses the 16 basic colors so it works on every terminal.
var PaletteDefault = Palette{
	H1:         Green,
	H2:         Green,
	H3:         Green,
	H4:         Green,
	H5:         Green,
	H6:         Green,
	CodeInline: Cyan,
	CodeBorder: Dim,
	Quote:      Yellow,
	ListMarker: Magenta,
	LinkText:   Blue,
	LinkURL:    Blue,
	Rule:       Dim,
	Error:      Red,
	Notice:     Yellow,
	Prompt:     Magenta,
}

var PaletteDracula = Palette{
	Text:       rgb(248, 248, 242),
	H1:         rgb(255, 121, 198),
	H2:         rgb(189, 147, 249),
	H3:         rgb(139, 233, 253),
	H4:         rgb(80, 250, 123),
	H5:         rgb(241, 250, 140),
	H6:         rgb(255, 184, 108),
	Emphasis:   rgb(241, 250, 140),
	Strong:     rgb(255, 184, 108),
	CodeInline: rgb(80, 250, 123),
	CodeBorder: rgb(98, 114, 164),
	Quote:      rgb(98, 114, 164),
	ListMarker: rgb(255, 121, 198),
	LinkText:   rgb(139, 233, 253),
	LinkURL:    rgb(98, 114, 164),
	Rule:       rgb(98, 114, 164),
	Error:      rgb(255, 85, 85),
	Notice:     rgb(241, 250, 140),
	Prompt:     rgb(189, 147, 249),
}

var PaletteNord = Palette{
	Text:       rgb(216, 222, 233),
	H1:         rgb(136, 192, 208),
	H2:         rgb(129, 161, 193),
	H3:         rgb(94, 129, 172),
	H4:         rgb(143, 188, 187),
	H5:         rgb(163, 190, 140),
	H6:         rgb(180, 142, 173),
	Emphasis:   rgb(235, 203, 139),
	Strong:     rgb(208, 135, 112),
	CodeInline: rgb(163, 190, 140),
	CodeBorder: rgb(76, 86, 106),
	Quote:      rgb(129, 161, 193),
	ListMarker: rgb(136, 192, 208),
	LinkText:   rgb(143, 188, 187),
	LinkURL:    rgb(76, 86, 106),
	Rule:       rgb(76, 86, 106),
	Error:      rgb(191, 97, 106),
	Notice:     rgb(235, 203, 139),
	Prompt:     rgb(136, 192, 208),
}

var PaletteGruvbox = Palette{
	Text:       rgb(235, 219, 178),
	H1:         rgb(251, 73, 52),
	H2:         rgb(250, 189, 47),
	H3:         rgb(184, 187, 38),
	H4:         rgb(131, 165, 152),
	H5:         rgb(211, 134, 155),
	H6:         rgb(142, 192, 124),
	Emphasis:   rgb(250, 189, 47),
	Strong:     rgb(254, 128, 25),
	CodeInline: rgb(142, 192, 124),
	CodeBorder: rgb(146, 131, 116),
	Quote:      rgb(168, 153, 132),
	ListMarker: rgb(254, 128, 25),
	LinkText:   rgb(131, 165, 152),
	LinkURL:    rgb(146, 131, 116),
	Rule:       rgb(146, 131, 116),
	Error:      rgb(251, 73, 52),
	Notice:     rgb(250, 189, 47),
	Prompt:     rgb(211, 134, 155),
}

var PaletteTokyoNight = Palette{
	Text:       rgb(192, 202, 245),
	H1:         rgb(122, 162, 247),
	H2:         rgb(187, 154, 247),
	H3:         rgb(125, 207, 255),
	H4:         rgb(158, 206, 106),
	H5:         rgb(224, 175, 104),
	H6:         rgb(247, 118, 142),
	Emphasis:   rgb(224, 175, 104),
	Strong:     rgb(255, 158, 100),
	CodeInline: rgb(158, 206, 106),
	CodeBorder: rgb(86, 95, 137),
	Quote:      rgb(86, 95, 137),
	ListMarker: rgb(187, 154, 247),
	LinkText:   rgb(125, 207, 255),
	LinkURL:    rgb(86, 95, 137),
	Rule:       rgb(86, 95, 137),
	Error:      rgb(247, 118, 142),
	Notice:     rgb(224, 175, 104),
	Prompt:     rgb(187, 154, 247),
}
