package app

import (
	"io"
	"log/slog"

	"github.com/MatusOllah/slogcolor"
	"github.com/fatih/color"
)

// NewLogger builds the coloured logger used by the server and the CLI.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := slogcolor.DefaultOptions
	opts.Level = level
	opts.MsgColor = color.New(color.FgMagenta)
	opts.SrcFileMode = slogcolor.Nop
	return slog.New(slogcolor.NewHandler(w, opts))
}
