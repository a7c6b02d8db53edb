package view

import (
	"path"
	"strings"

	"github.com/portal/backend/internal/domain/shared"
)

// TutorialRoot is the template directory holding the tutorial pages
const TutorialRoot = "tutorial"

// DefaultTutorialPage is rendered by /tutorial
const DefaultTutorialPage = "a1"

var tutorialPages = map[string]struct{}{
	"a1": {},
	"a2": {},
	"a3": {},
}

// IsTutorialPage reports whether page is one of the known tutorial pages
func IsTutorialPage(page string) bool {
	_, ok := tutorialPages[page]
	return ok
}

// ResolvePage maps a tutorial page identifier to its template name.
// Anything outside the known pages, or anything that would resolve outside
// TutorialRoot, is ErrForbidden.
func ResolvePage(page string) (string, error) {
	if !IsTutorialPage(page) {
		return "", shared.ErrForbidden
	}
	resolved := path.Clean(path.Join(TutorialRoot, page))
	if !strings.HasPrefix(resolved, TutorialRoot+"/") || path.Dir(resolved) != TutorialRoot {
		return "", shared.ErrForbidden
	}
	return resolved, nil
}
