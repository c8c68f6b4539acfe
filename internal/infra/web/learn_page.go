package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paperlearn/internal/domain"
	"paperlearn/internal/markdown"
)

var learnTmpl = template.Must(template.New("learn").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; color: #222; }
pre { background: #f6f6f6; padding: 1rem; overflow-x: auto; }
code { font-family: ui-monospace, monospace; font-size: 0.9em; }
img { max-width: 100%; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
</style>
</head>
<body>
<article>
{{if .CoverURL}}<img src="{{.CoverURL}}" alt="">{{end}}
<h1>{{.Title}}</h1>
{{.Body}}
</article>
</body>
</html>
`))

type learnPage struct {
	Title    string
	CoverURL string
	// Body is renderer output; the renderer escapes the source Markdown
	// before emitting any markup, so it is safe to inline.
	Body template.HTML
}

func (s *Server) learnPageHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := s.posts.GetPublished(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.log.Error().Err(err).Str("slug", slug).Msg("load article failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	page := learnPage{
		Title: article.Title,
		Body:  template.HTML(markdown.Render(article.BodyMarkdown)),
	}
	if article.CoverKey != "" {
		page.CoverURL = "/assets/" + article.CoverKey
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := learnTmpl.Execute(w, page); err != nil {
		s.log.Error().Err(err).Str("slug", slug).Msg("render article page failed")
	}
}
