package main

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/epithet-ssh/tlv/pkg/bertlv"
	"github.com/epithet-ssh/tlv/pkg/hexfmt"
)

// recordView is what the decode command prints for one record.
type recordView struct {
	Index    int
	Offset   int64
	Tag      bertlv.Tag
	Length   string
	Value    []byte
	Streamed bool
}

// attrs returns the template variables for v.
func (v recordView) attrs() map[string]any {
	return map[string]any{
		"index":    v.Index,
		"offset":   v.Offset,
		"tag":      v.Tag.String(),
		"length":   v.Length,
		"value":    fmt.Sprintf("%X", v.Value),
		"octets":   hexfmt.Format(v.Value),
		"streamed": v.Streamed,
	}
}

// render formats v with tmpl, or with the default layout when tmpl is nil.
// The result always ends in a newline.
func render(tmpl *mustache.Template, v recordView) (string, error) {
	var line string
	switch {
	case tmpl != nil:
		var err error
		line, err = tmpl.Render(v.attrs())
		if err != nil {
			return "", fmt.Errorf("failed to render template: %w", err)
		}
	case v.Streamed:
		line = fmt.Sprintf("%s [%s] (not shown)", v.Tag, v.Length)
	case len(v.Value) == 0:
		line = fmt.Sprintf("%s [%s]", v.Tag, v.Length)
	default:
		line = fmt.Sprintf("%s [%s] %s", v.Tag, v.Length, hexfmt.Format(v.Value))
	}

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return line, nil
}
