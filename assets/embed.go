package assets

import "embed"

//go:embed app.css
var AssetsFS embed.FS
