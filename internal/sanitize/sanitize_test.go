// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"strings"
	"testing"
)

func TestHTMLStripsScripts(t *testing.T) {
	got := HTML(`<p>fine</p><script>alert(1)</script>`)
	if strings.Contains(got, "script") {
		t.Errorf("script survived: %s", got)
	}
	if !strings.Contains(got, "<p>fine</p>") {
		t.Errorf("benign markup lost: %s", got)
	}
}

func TestHTMLStripsEventHandlers(t *testing.T) {
	got := HTML(`<a href="https://example.test" onclick="steal()">link</a>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("event handler survived: %s", got)
	}
	if !strings.Contains(got, "href=") {
		t.Errorf("legitimate link lost: %s", got)
	}
}

func TestHTMLKeepsHighlightedCode(t *testing.T) {
	in := `<pre style="background-color:#272822"><code><span style="color:#66d9ef">func</span></code></pre>`
	got := HTML(in)
	if !strings.Contains(got, `style="color:#66d9ef"`) {
		t.Errorf("chroma styling stripped: %s", got)
	}
}

func TestHTMLBlocksJavascriptURLs(t *testing.T) {
	got := HTML(`<a href="javascript:alert(1)">x</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript URL survived: %s", got)
	}
}

func TestHTMLAllowsImages(t *testing.T) {
	got := HTML(`<img src="https://example.test/pic.png" alt="pic">`)
	if !strings.Contains(got, "<img") {
		t.Errorf("image stripped: %s", got)
	}
}
