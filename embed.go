package mysite

import "embed"

// FlagAssets holds the flag image of every locale the site ships with,
// served under /static/flags/.
//
//go:embed static/flags/*.svg
var FlagAssets embed.FS
