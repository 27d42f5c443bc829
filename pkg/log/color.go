package log

import (
	"github.com/mgutz/ansi"
)

type colorFunc func(string) string

// palette colors the parts of a pretty log line.
type palette struct {
	levels    map[Level]colorFunc
	project   colorFunc
	timestamp colorFunc
}

func newPalette() *palette {
	return &palette{
		levels: map[Level]colorFunc{
			ErrorLevel: ansi.ColorFunc("red"),
			WarnLevel:  ansi.ColorFunc("yellow"),
			InfoLevel:  ansi.ColorFunc("green"),
			DebugLevel: ansi.ColorFunc("blue+h"),
			TraceLevel: ansi.ColorFunc("white"),
		},
		project:   ansi.ColorFunc("cyan"),
		timestamp: ansi.ColorFunc("black+h"),
	}
}

func (p *palette) level(level Level) colorFunc {
	if fn, ok := p.levels[level]; ok {
		return fn
	}

	return func(s string) string { return s }
}
