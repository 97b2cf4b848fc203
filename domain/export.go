package domain

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

const defaultGistFilename = "project-summary.md"

// Gist is a single-file snippet submitted to the paste service.
type Gist struct {
	Description string
	Public      bool
	Filename    string
	Content     string
}

// GistResult identifies a created gist.
type GistResult struct {
	ID  string
	URL string
}

// GistPublisher creates gists on the external paste service.
type GistPublisher interface {
	CreateGist(ctx context.Context, g Gist) (GistResult, error)
}

// ExportResult is returned after a summary was shipped.
type ExportResult struct {
	Summary
	GistID  string
	GistURL string
}

// Exporter renders project summaries and publishes them as private gists.
type Exporter struct {
	projects ProjectService
	gists    GistPublisher
	deps
}

func NewExporter(st Store, gists GistPublisher, opts ...Option) Exporter {
	return Exporter{projects: NewProjectService(st, opts...), gists: gists, deps: newDeps(opts)}
}

// Export summarizes the project and submits it once. Errors from the gist
// service are returned as-is.
func (e Exporter) Export(ctx context.Context, projectID string) (ExportResult, error) {
	p, err := e.projects.Get(ctx, projectID)
	if err != nil {
		return ExportResult{}, err
	}
	if e.gists == nil {
		return ExportResult{}, &ConfigError{Msg: "GitHub token is missing in environment variables"}
	}
	sum := Summarize(p)
	res, err := e.gists.CreateGist(ctx, Gist{
		Description: "Project Summary for " + p.Title,
		Public:      false,
		Filename:    GistFilename(p.Title),
		Content:     sum.Markdown,
	})
	if err != nil {
		return ExportResult{}, err
	}
	e.logger.WithFields(log.Fields{"project": p.ID, "gist": res.ID}).Info("project summary exported")
	e.publish(ctx, ProjectExported, p.ID, p.ID)
	return ExportResult{Summary: sum, GistID: res.ID, GistURL: res.URL}, nil
}

// GistFilename derives the gist file name from a project title.
func GistFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		return defaultGistFilename
	}
	return name + ".md"
}
