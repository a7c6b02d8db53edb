// Package view holds the embedded HTML templates of the portal and the
// helpers used to render them: the template function map, environmental
// script injection and the tutorial page resolver.
package view
