// Package pathutil maps request paths onto route templates for metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern pairs a path regex with its label template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// Evaluated in order; the first match wins.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/portals/\d+/companies$`), Template: "/portals/:portal/companies"},
	{Pattern: regexp.MustCompile(`^/portals/\d+/products$`), Template: "/portals/:portal/products"},
	{Pattern: regexp.MustCompile(`^/portals/\d+/events$`), Template: "/portals/:portal/events"},
	{Pattern: regexp.MustCompile(`^/portals/\d+/articles$`), Template: "/portals/:portal/articles"},

	{Pattern: regexp.MustCompile(`^/articles/[^/]+/comments$`), Template: "/articles/:id/comments"},
	{Pattern: regexp.MustCompile(`^/comments/[^/]+$`), Template: "/comments/:id"},

	{Pattern: regexp.MustCompile(`^/companies/[^/]+$`), Template: "/companies/:id"},
	{Pattern: regexp.MustCompile(`^/products/[^/]+$`), Template: "/products/:id"},
	{Pattern: regexp.MustCompile(`^/events/[^/]+$`), Template: "/events/:id"},
	{Pattern: regexp.MustCompile(`^/articles/[^/]+$`), Template: "/articles/:id"},

	{Pattern: regexp.MustCompile(`^/banners/[^/]+$`), Template: "/banners/:placement"},
}

// NormalizePath converts a request path into its route template so that
// entity IDs do not become metric label values.
//
//	NormalizePath("/portals/7/events")              // "/portals/:portal/events"
//	NormalizePath("/companies/acme-robotics")       // "/companies/:id"
//	NormalizePath("/articles/art-42/comments?x=1")  // "/articles/:id/comments"
//	NormalizePath("/health")                        // "/health"
//
// Paths that match no route are returned unchanged.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
