package httpmetrics

import "strings"

// knownRoots are the first path segments the application serves. Anything
// else is reported as /other so scanners cannot inflate label cardinality.
var knownRoots = map[string]struct{}{
	"signup": {}, "login": {}, "logout": {},
	"create": {}, "current": {}, "completed": {}, "task": {},
	"report-issue": {}, "health": {}, "metrics": {},
}

var taskActions = map[string]struct{}{
	"complete": {}, "delete": {},
}

// NormalizePath maps a request path to its route: /task/<anything> becomes
// /task/{id} and only known actions are kept below it.
func NormalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}

	parts := strings.Split(trimmed, "/")
	if _, ok := knownRoots[parts[0]]; !ok {
		return "/other"
	}
	if parts[0] != "task" {
		if len(parts) > 1 {
			return "/" + parts[0] + "/*"
		}
		return "/" + parts[0]
	}

	switch {
	case len(parts) == 1:
		return "/task"
	case len(parts) == 2:
		return "/task/{id}"
	}
	if _, ok := taskActions[parts[2]]; ok && len(parts) == 3 {
		return "/task/{id}/" + parts[2]
	}
	return "/task/{id}/*"
}
