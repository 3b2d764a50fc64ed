package rules

import "ns2pp/pkg/models"

// Engine decides whether a trace record is selected by user supplied rules.
type Engine interface {
	Match(event *models.Event) bool
}
