package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminal fonts render box-drawing characters badly; an ASCII set keeps
// the canvas usable there.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference picks the glyph set: HIERARCHY_TUI_GLYPHS wins over the
// config value. Unknown values are ignored.
func applyGlyphPreference(configured string) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("HIERARCHY_TUI_GLYPHS")))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(configured))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return "+"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "▾"
}

func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}

// Line directions meeting in one canvas cell.
const (
	lineUp = 1 << iota
	lineDown
	lineLeft
	lineRight
)

var unicodeLines = map[int]rune{
	lineLeft | lineRight:                     '─',
	lineLeft:                                 '─',
	lineRight:                                '─',
	lineUp | lineDown:                        '│',
	lineUp:                                   '│',
	lineDown:                                 '│',
	lineLeft | lineDown:                      '┐',
	lineLeft | lineUp:                        '┘',
	lineRight | lineDown:                     '┌',
	lineRight | lineUp:                       '└',
	lineUp | lineDown | lineRight:            '├',
	lineUp | lineDown | lineLeft:             '┤',
	lineLeft | lineRight | lineDown:          '┬',
	lineLeft | lineRight | lineUp:            '┴',
	lineUp | lineDown | lineLeft | lineRight: '┼',
}

// glyphLine returns the connector rune for a set of line directions.
func glyphLine(dirs int) rune {
	if dirs == 0 {
		return ' '
	}
	if glyphs() == glyphSetASCII {
		switch dirs {
		case lineLeft, lineRight, lineLeft | lineRight:
			return '-'
		case lineUp, lineDown, lineUp | lineDown:
			return '|'
		default:
			return '+'
		}
	}
	return unicodeLines[dirs]
}
