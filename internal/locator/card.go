package locator

import (
	"context"

	"deephole/internal/timetoken"
	"deephole/internal/zone"
	"deephole/lib/htmlutil"
	"deephole/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultCardSelector      = `[class*="card"], [class*="Card"]`
	DefaultCountdownSelector = `[class*="countdown"], [class*="timer"], [class*="remain"], time`
	defaultMaxDepth          = 3
)

// CardStrategy scans self-contained card regions. The label of a card is
// searched in the card, then in its preceding siblings, then in the own text
// and preceding siblings of up to MaxDepth ancestors. Siblings that are
// cards themselves are never used as a label, they belong to another zone.
// A card naming more than one zone is skipped.
type CardStrategy struct {
	CardSelector      string
	CountdownSelector string
	MaxDepth          int
}

func (CardStrategy) Name() string {
	return "card"
}

func (s CardStrategy) withDefaults() CardStrategy {
	if s.CardSelector == "" {
		s.CardSelector = DefaultCardSelector
	}
	if s.CountdownSelector == "" {
		s.CountdownSelector = DefaultCountdownSelector
	}
	if s.MaxDepth <= 0 || s.MaxDepth > defaultMaxDepth {
		s.MaxDepth = defaultMaxDepth
	}
	return s
}

func (s CardStrategy) Locate(ctx context.Context, page Page, table zone.Table) zone.Result {
	result := zone.Result{}
	if page.Doc == nil {
		return result
	}
	s = s.withDefaults()

	page.Doc.Find(s.CardSelector).Each(func(_ int, card *goquery.Selection) {
		z, ok := s.label(ctx, card, table)
		if !ok {
			return
		}
		if _, exists := result[z.Name]; exists {
			return
		}
		v, ok := s.countdown(ctx, card)
		if !ok {
			return
		}
		result.Set(z.Name, v)
	})
	return result
}

// visibleText keeps adjacent text nodes apart, goquery's Text would glue
// "01:02:03" and a following "3" into "01:02:033".
func visibleText(ctx context.Context, sel *goquery.Selection) string {
	return textutil.Collapse(htmlutil.FlattenText(ctx, sel))
}

func (s CardStrategy) matchSiblings(ctx context.Context, node *goquery.Selection, table zone.Table) (zone.Zone, bool) {
	var found zone.Zone
	matched := false
	// PrevAll is ordered from the nearest sibling outwards
	node.PrevAll().Not(s.CardSelector).EachWithBreak(func(_ int, sibling *goquery.Selection) bool {
		found, matched = table.Match(visibleText(ctx, sibling))
		return !matched
	})
	return found, matched
}

func (s CardStrategy) label(ctx context.Context, card *goquery.Selection, table zone.Table) (zone.Zone, bool) {
	switch own := table.MatchAll(visibleText(ctx, card)); len(own) {
	case 0:
	case 1:
		return own[0], true
	default:
		// a wrapper around several cards is not self-contained
		return zone.Zone{}, false
	}
	if z, ok := s.matchSiblings(ctx, card, table); ok {
		return z, true
	}

	node := card
	for depth := 0; depth < s.MaxDepth; depth++ {
		node = node.Parent()
		if node.Length() == 0 || goquery.NodeName(node) == "body" {
			break
		}
		if z, ok := table.Match(textutil.Collapse(htmlutil.OwnText(node))); ok {
			return z, true
		}
		if z, ok := s.matchSiblings(ctx, node, table); ok {
			return z, true
		}
	}
	return zone.Zone{}, false
}

func (s CardStrategy) countdown(ctx context.Context, card *goquery.Selection) (timetoken.Value, bool) {
	var v timetoken.Value
	found := false
	card.Find(s.CountdownSelector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		v, found = timetoken.Parse(visibleText(ctx, el))
		return !found
	})
	if found {
		return v, true
	}
	return timetoken.Parse(visibleText(ctx, card))
}
