package public

import (
	"embed"
	"io/fs"
)

//go:embed static/*.css static/*.js
var static embed.FS

// StaticFS exposes the console stylesheet and script rooted at static/,
// served under /public/static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static")
}
