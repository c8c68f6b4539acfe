// Package markdown converts article Markdown into a sanitized HTML
// fragment. The renderer is a fixed sequence of regex substitutions;
// stage order is significant because later patterns must not re-match
// text produced by earlier ones.
//
// Known limitation: nested emphasis (bold inside italic and the
// reverse) is not guaranteed to nest correctly. Mixed ordered and
// unordered items in one contiguous run merge into a single list.
// Both behaviors are intentional and pinned by tests.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var (
	fencedRe = regexp.MustCompile("(?s)```([A-Za-z0-9+#-]*)\r?\n(.*?)```")
	codeRe   = regexp.MustCompile("`([^`\n]+)`")

	// Most-specific first so "###" is never read as "#" + "##".
	headerRes = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`(?m)^###### (.+)$`), "<h6>$1</h6>"},
		{regexp.MustCompile(`(?m)^##### (.+)$`), "<h5>$1</h5>"},
		{regexp.MustCompile(`(?m)^#### (.+)$`), "<h4>$1</h4>"},
		{regexp.MustCompile(`(?m)^### (.+)$`), "<h3>$1</h3>"},
		{regexp.MustCompile(`(?m)^## (.+)$`), "<h2>$1</h2>"},
		{regexp.MustCompile(`(?m)^# (.+)$`), "<h1>$1</h1>"},
	}

	boldStarRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe  = regexp.MustCompile(`__(.+?)__`)
	italStarRe   = regexp.MustCompile(`\*([^*\n]+)\*`)
	italUnderRe  = regexp.MustCompile(`_([^_\n]+)_`)
	strikeRe     = regexp.MustCompile(`~~(.+?)~~`)
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	quoteLineRe  = regexp.MustCompile(`(?m)^&gt; ?(.*)$`)
	hrRe         = regexp.MustCompile(`(?m)^(?:---|\*\*\*|___)$`)
	ulItemRe     = regexp.MustCompile(`(?m)^[-*] (.+)$`)
	olItemRe     = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	listRunRe    = regexp.MustCompile(`(?:<li>.*</li>(?:\n|$))+`)
	blankSplitRe = regexp.MustCompile(`\n{2,}`)
)

// Render is a pure function: identical input yields identical output.
// Raw HTML-significant characters are escaped once, up front, before any
// markup is reintroduced, so user input can never smuggle tags through.
func Render(md string) string {
	if md == "" {
		return ""
	}
	out := htmlEscaper.Replace(md)

	// Fenced blocks are rendered first and parked behind placeholders so
	// no later stage can touch their contents.
	var fences []string
	out = fencedRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := fencedRe.FindStringSubmatch(m)
		lang, body := sub[1], strings.TrimSpace(sub[2])
		var html string
		if lang != "" {
			html = fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, lang, body)
		} else {
			html = fmt.Sprintf(`<pre><code>%s</code></pre>`, body)
		}
		fences = append(fences, html)
		return fmt.Sprintf("\x00fence:%d\x00", len(fences)-1)
	})

	out = codeRe.ReplaceAllString(out, "<code>$1</code>")
	for _, h := range headerRes {
		out = h.re.ReplaceAllString(out, h.repl)
	}
	out = boldStarRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = boldUnderRe.ReplaceAllString(out, "<strong>$1</strong>")
	// Italic runs after bold so the bold delimiters are gone by now.
	out = italStarRe.ReplaceAllString(out, "<em>$1</em>")
	out = italUnderRe.ReplaceAllString(out, "<em>$1</em>")
	out = strikeRe.ReplaceAllString(out, "<del>$1</del>")
	// Images before links: the image syntax embeds the link syntax.
	out = imageRe.ReplaceAllString(out, `<img src="$2" alt="$1" loading="lazy">`)
	out = linkRe.ReplaceAllString(out, `<a href="$2" rel="noopener">$1</a>`)

	out = quoteLineRe.ReplaceAllString(out, "<blockquote>$1</blockquote>")
	// Consecutive quote lines collapse into one block; no nesting support.
	out = strings.ReplaceAll(out, "</blockquote>\n<blockquote>", "<br>")

	out = hrRe.ReplaceAllString(out, "<hr>")
	out = ulItemRe.ReplaceAllString(out, "<li>$1</li>")
	out = olItemRe.ReplaceAllString(out, "<li>$1</li>")
	out = listRunRe.ReplaceAllStringFunc(out, func(run string) string {
		return "<ul>" + strings.TrimRight(run, "\n") + "</ul>\n"
	})

	out = paragraphs(out)

	for i, html := range fences {
		out = strings.Replace(out, fmt.Sprintf("\x00fence:%d\x00", i), html, 1)
	}
	return out
}

// paragraphs wraps blank-line-separated prose blocks in <p> and turns
// remaining single newlines inside them into <br>. Blocks already opened
// by a block-level tag stay unwrapped.
func paragraphs(s string) string {
	blocks := blankSplitRe.Split(s, -1)
	kept := blocks[:0]
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if isBlockLevel(b) {
			kept = append(kept, strings.TrimRight(b, "\n"))
			continue
		}
		kept = append(kept, "<p>"+strings.ReplaceAll(b, "\n", "<br>")+"</p>")
	}
	return strings.Join(kept, "\n")
}

var blockPrefixes = []string{
	"<h1>", "<h2>", "<h3>", "<h4>", "<h5>", "<h6>",
	"<ul>", "<ol>", "<li>", "<blockquote>", "<hr>", "<pre>",
	"\x00fence:",
}

func isBlockLevel(b string) bool {
	for _, p := range blockPrefixes {
		if strings.HasPrefix(b, p) {
			return true
		}
	}
	return false
}
