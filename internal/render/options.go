// Package render formats assistant replies for the terminal.
package render

import "github.com/diogo/helper/internal/config"

// StyleAuto picks the dark or light style from the terminal background
const StyleAuto = "auto"

// Options configures the markdown renderer
type Options struct {
	// Width is the word-wrap column
	Width int
	// Style is a glamour style name ("dark", "light", "notty", ...), "auto"
	// or the path of a JSON style file
	Style            string
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return FromConfig(config.DefaultMarkdownConfig())
}

// FromConfig builds Options from the markdown section of the config file.
// GLAMOUR_STYLE, when set, wins over the configured style.
func FromConfig(md config.MarkdownConfig) Options {
	opts := Options{
		Width:            80,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = StyleAuto
	}
	return opts
}

// WithWidth returns a copy of o wrapping at width columns
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns a copy of o using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
