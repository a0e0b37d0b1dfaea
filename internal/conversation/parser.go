// Package conversation turns typed REPL commands into viewer events.
package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.EventParser = (*KeywordParser)(nil)

// KeywordParser matches user input to events using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

// patternRule maps a regex to an event. Capture group 1, when present, is
// the payload; for ingredient edits group 1 is the number and group 2 the value.
type patternRule struct {
	regex *regexp.Regexp
	event domain.EventType
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(?:list|ls|recipes|show)$`), domain.EventShowList},
		{regexp.MustCompile(`(?i)^(?:clear|reset|all)$`), domain.EventClearTags},
		{regexp.MustCompile(`(?i)^(?:tag|t|toggle)\s+(.+)$`), domain.EventToggleTag},
		{regexp.MustCompile(`(?i)^#(\S.*)$`), domain.EventToggleTag},
		{regexp.MustCompile(`(?i)^(?:open|o|select|pick|view)\s+(.+)$`), domain.EventOpenRecipe},
		{regexp.MustCompile(`^(\d+)$`), domain.EventOpenRecipe},
		{regexp.MustCompile(`(?i)^(?:servings|serves|serve|s)(?:\s+(.*))?$`), domain.EventEditServings},
		{regexp.MustCompile(`(?i)^(?:set|i)\s+(\d+)\s*(.*)$`), domain.EventEditIngredient},
		{regexp.MustCompile(`^(\d+)\s*=\s*(.*)$`), domain.EventEditIngredient},
		{regexp.MustCompile(`(?i)^(?:back|b|close)$`), domain.EventBack},
		{regexp.MustCompile(`(?i)^(?:help|h|\?)$`), domain.EventHelp},
		{regexp.MustCompile(`(?i)^(?:quit|exit|q)$`), domain.EventQuit},
	}
	return p
}

// Parse converts user input into an event. Unrecognised input yields
// EventUnknown with the input as payload.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Event, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Event{Type: domain.EventUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched event: %s", rule.event)

		ev := &domain.Event{Type: rule.event}
		if rule.event == domain.EventEditIngredient {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return &domain.Event{Type: domain.EventUnknown, Payload: trimmed}, nil
			}
			ev.Index = n - 1
			ev.Payload = strings.TrimSpace(m[2])
			return ev, nil
		}
		if len(m) > 1 {
			ev.Payload = strings.TrimSpace(m[1])
		}
		return ev, nil
	}

	p.log.Debug("no match, returning unknown event")
	return &domain.Event{Type: domain.EventUnknown, Payload: trimmed}, nil
}
