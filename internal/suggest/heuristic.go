package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// keywordGroup links merchant and description keywords to the category
// names a user is likely to have for them
type keywordGroup struct {
	aliases    []string
	keywords   []string
	confidence float64
}

var keywordGroups = []keywordGroup{
	{
		aliases:    []string{"groceries", "grocery", "supermarket", "food"},
		keywords:   []string{"walmart", "kroger", "aldi", "lidl", "tesco", "safeway", "costco", "whole foods", "trader joe", "publix", "sainsbury"},
		confidence: 0.85,
	},
	{
		aliases:    []string{"dining", "restaurants", "eating out", "takeaway", "coffee"},
		keywords:   []string{"starbucks", "mcdonald", "burger", "pizza", "restaurant", "cafe", "doordash", "uber eats", "deliveroo", "chipotle"},
		confidence: 0.85,
	},
	{
		aliases:    []string{"transport", "transportation", "travel", "fuel", "auto", "car"},
		keywords:   []string{"uber", "lyft", "shell", "chevron", "exxon", "fuel", "parking", "transit", "metro", "railway"},
		confidence: 0.75,
	},
	{
		aliases:    []string{"entertainment", "subscriptions", "streaming", "leisure"},
		keywords:   []string{"netflix", "spotify", "hulu", "disney", "cinema", "steam", "playstation", "youtube"},
		confidence: 0.85,
	},
	{
		aliases:    []string{"shopping", "retail", "household"},
		keywords:   []string{"amazon", "target", "ebay", "best buy", "ikea", "etsy", "home depot"},
		confidence: 0.7,
	},
	{
		aliases:    []string{"utilities", "bills", "housing", "rent"},
		keywords:   []string{"electric", "water", "internet", "comcast", "verizon", "at&t", "rent", "mortgage"},
		confidence: 0.8,
	},
	{
		aliases:    []string{"health", "healthcare", "medical", "pharmacy"},
		keywords:   []string{"pharmacy", "cvs", "walgreens", "dental", "clinic", "hospital", "doctor"},
		confidence: 0.8,
	},
	{
		aliases:    []string{"travel", "holidays", "vacation"},
		keywords:   []string{"airlines", "airways", "hotel", "marriott", "hilton", "airbnb", "expedia", "booking.com"},
		confidence: 0.8,
	},
	{
		aliases:    []string{"income", "salary", "wages"},
		keywords:   []string{"salary", "payroll", "direct deposit", "paycheck", "wage"},
		confidence: 0.9,
	},
	{
		aliases:    []string{"cash", "atm"},
		keywords:   []string{"atm", "cash withdrawal"},
		confidence: 0.85,
	},
	{
		aliases:    []string{"fees", "bank fees", "charges"},
		keywords:   []string{"overdraft", "service fee", "late fee", "bank fee"},
		confidence: 0.85,
	},
}

const (
	nameMentionConfidence = 0.9
	similarityThreshold   = 0.8
	fuzzyWeight           = 0.6
)

// HeuristicProvider suggests existing categories without any network call.
// It scores each category by direct mention in the description, by keyword
// groups, and by fuzzy similarity between description words and the name.
type HeuristicProvider struct{}

func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{}
}

func (p *HeuristicProvider) Name() string {
	return "heuristic"
}

func (p *HeuristicProvider) SuggestCategory(ctx context.Context, req Request) ([]Suggestion, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrEmptyRequest
	}

	text := strings.ToLower(req.Description)
	if req.Details != nil {
		text += " " + strings.ToLower(*req.Details)
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '&')
	})

	suggestions := make([]Suggestion, 0, len(req.ExistingCategories))
	for _, name := range req.ExistingCategories {
		if s, ok := scoreCategory(name, text, words); ok {
			suggestions = append(suggestions, s)
		}
	}

	return Rank(suggestions), nil
}

func scoreCategory(name, text string, words []string) (Suggestion, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Suggestion{}, false
	}

	best := Suggestion{Category: name}

	if strings.Contains(text, normalized) {
		best.Confidence = nameMentionConfidence
		best.Reasoning = fmt.Sprintf("description mentions %q", name)
	}

	for _, group := range keywordGroups {
		if group.confidence <= best.Confidence || !matchesAlias(normalized, group.aliases) {
			continue
		}
		for _, keyword := range group.keywords {
			if strings.Contains(text, keyword) {
				best.Confidence = group.confidence
				best.Reasoning = fmt.Sprintf("%q is usually %s spending", keyword, strings.ToLower(name))
				break
			}
		}
	}

	for _, word := range words {
		sim := similarity(word, normalized)
		if sim < similarityThreshold {
			continue
		}
		if score := sim * fuzzyWeight; score > best.Confidence {
			best.Confidence = score
			best.Reasoning = fmt.Sprintf("%q resembles %q", word, name)
		}
	}

	return best, best.Confidence > 0
}

func matchesAlias(name string, aliases []string) bool {
	for _, alias := range aliases {
		if strings.Contains(name, alias) || similarity(name, alias) >= similarityThreshold {
			return true
		}
	}
	return false
}

// similarity returns 1 minus the normalized Levenshtein distance
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
