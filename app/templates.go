package app

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dharvista/site/datamodels"
	"github.com/gin-gonic/gin"
)

var templateFuncs = template.FuncMap{
	"jobType":     datamodels.FormatJobType,
	"amount":      datamodels.FormatAmount,
	"date":        func(t time.Time) string { return t.Format("02 Jan 2006") },
	"isoDate":     func(t time.Time) string { return t.Format("2006-01-02") },
	"percent":     func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"lower":       strings.ToLower,
	"queryEscape": url.QueryEscape,
	"mailto": func(email, subject string) template.URL {
		u := "mailto:" + email
		if subject != "" {
			// mail clients do not decode '+' as a space
			u += "?subject=" + strings.ReplaceAll(url.QueryEscape("Application: "+subject), "+", "%20")
		}
		return template.URL(u)
	},
}

// pageTemplates renders content inside the page layout, along with any partials it uses.
func pageTemplates(content string, partials ...string) []string {
	return append([]string{layoutTemplate, content}, partials...)
}

// pages returns a PageTemplateDefiner that always renders the same templates.
func pages(content string, partials ...string) PageTemplateDefiner {
	templates := pageTemplates(content, partials...)
	return func(*gin.Context, *slog.Logger) []string {
		return templates
	}
}

// partial returns a PageTemplateDefiner that renders a bare partial, for htmx swaps.
func partial(name string, others ...string) PageTemplateDefiner {
	templates := append([]string{name}, others...)
	return func(*gin.Context, *slog.Logger) []string {
		return templates
	}
}
