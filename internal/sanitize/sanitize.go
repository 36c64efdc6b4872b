// Package sanitize provides an allow-list HTML policy for rendered post
// bodies. Post content is member-supplied Markdown; after conversion to
// HTML it passes through this policy so script, iframe, style, and on*
// event attributes never reach a visitor's browser.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// policy is built once and is safe for concurrent use.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Syntax-highlighted code blocks carry inline style spans from chroma.
	p.AllowAttrs("style").OnElements("span", "pre", "code")
	p.AllowAttrs("class").OnElements("span", "pre", "code", "div")

	// Images over https only; no javascript: or data: sources.
	p.AllowImages()
	p.RequireNoFollowOnLinks(true)

	return p
}

// HTML sanitizes an HTML fragment, returning only allow-listed markup.
// Idempotent: sanitizing already-sanitized output returns it unchanged.
func HTML(fragment string) string {
	return policy.Sanitize(fragment)
}
