// Package palette provides the embedded height colour ramp shared by the
// terminal and pixel renderers.
package palette

import "embed"

//go:embed *.json
var dataFS embed.FS
