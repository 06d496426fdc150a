// Package web embeds the static HTML pages served at / and /dashboard.
//
// The pages are deliberately framework-free: a submission form on the index
// and a dashboard that polls the JSON API. Everything dynamic goes through
// the same public endpoints the API clients use.
package web

import "embed"

//go:embed pages/*.html
var Pages embed.FS
