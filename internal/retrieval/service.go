// Package retrieval finds catalog tests and labs relevant to free-text
// queries. It backs the chat engine and the recommendation endpoint.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/labease/labease-platform/internal/catalog"
)

// DefaultLimit caps how many tests or labs a retrieval returns.
const DefaultLimit = 10

// meaningfulTokenLen is the minimum keyword length considered during
// fuzzy fallback. Shorter tokens ("a", "the", "for") match too broadly.
const meaningfulTokenLen = 3

// priceStopwords are filler words stripped from price queries before
// keyword matching.
var priceStopwords = map[string]struct{}{
	"price": {}, "cost": {}, "expensive": {}, "cheap": {}, "affordable": {},
	"how": {}, "much": {}, "what": {}, "is": {}, "the": {}, "of": {},
	"a": {}, "an": {}, "does": {}, "do": {},
}

// testPatterns maps a query pattern to the catalog keywords it implies.
// Order matters: the first pattern found in the query wins.
var testPatterns = []struct {
	pattern  string
	keywords []string
}{
	{"glucose", []string{"glucose", "blood sugar", "sugar"}},
	{"diabetes", []string{"glucose", "hba1c", "hemoglobin a1c", "diabetes"}},
	{"thyroid", []string{"thyroid", "tsh", "t3", "t4"}},
	{"liver", []string{"liver", "lft", "alt", "ast", "bilirubin"}},
	{"kidney", []string{"kidney", "creatinine", "bun", "renal"}},
	{"lipid", []string{"lipid", "cholesterol"}},
	{"cardiac", []string{"cardiac", "troponin", "ecg", "ekg", "heart"}},
}

// symptomMappings maps symptom phrases to test keywords. Every phrase
// present in the symptom text contributes its keywords, in order.
var symptomMappings = []struct {
	symptom  string
	keywords []string
}{
	{"diabetes", []string{"glucose", "hba1c", "hemoglobin a1c", "blood sugar", "diabetes"}},
	{"blood sugar", []string{"glucose", "hba1c", "diabetes"}},
	{"glucose", []string{"glucose", "hba1c", "diabetes"}},
	{"thirsty", []string{"glucose", "diabetes"}},
	{"frequent urination", []string{"glucose", "diabetes", "urinalysis"}},
	{"heart", []string{"cardiac", "troponin", "ekg", "ecg", "cholesterol", "lipid"}},
	{"chest pain", []string{"cardiac", "troponin", "ekg", "ecg"}},
	{"cardiac", []string{"cardiac", "troponin", "ekg", "ecg"}},
	{"thyroid", []string{"thyroid", "tsh", "t3", "t4"}},
	{"tired", []string{"thyroid", "tsh", "cbc", "vitamin d", "vitamin b12"}},
	{"fatigue", []string{"thyroid", "tsh", "cbc", "vitamin d", "vitamin b12"}},
	{"weight gain", []string{"thyroid", "tsh"}},
	{"weight loss", []string{"thyroid", "tsh"}},
	{"liver", []string{"liver", "alt", "ast", "bilirubin", "lft"}},
	{"jaundice", []string{"liver", "bilirubin", "alt", "ast"}},
	{"kidney", []string{"kidney", "creatinine", "bun", "urinalysis"}},
	{"urine", []string{"urinalysis", "kidney", "creatinine"}},
	{"cholesterol", []string{"cholesterol", "lipid"}},
	{"anemia", []string{"cbc", "complete blood", "hemoglobin"}},
	{"blood count", []string{"cbc", "complete blood"}},
	{"cbc", []string{"cbc", "complete blood"}},
}

// Service retrieves catalog entries for the dialogue engine.
type Service struct {
	catalog catalog.Repository
}

// NewService creates a retrieval service over the catalog.
func NewService(repo catalog.Repository) *Service {
	return &Service{catalog: repo}
}

// Tests finds tests matching the query. Direct substring matching is
// tried first; when it finds nothing, each meaningful token of the
// query is tried in turn and the first token with hits wins.
func (s *Service) Tests(ctx context.Context, query string, limit int) ([]catalog.Test, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := strings.ToLower(strings.TrimSpace(query))

	tests, err := s.catalog.SearchTests(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieval: search tests: %w", err)
	}
	if len(tests) > 0 {
		return tests, nil
	}

	for _, token := range strings.Fields(q) {
		if len(token) <= meaningfulTokenLen {
			continue
		}
		tests, err = s.catalog.SearchTests(ctx, token, limit)
		if err != nil {
			return nil, fmt.Errorf("retrieval: search tests: %w", err)
		}
		if len(tests) > 0 {
			return tests, nil
		}
	}
	return nil, nil
}

// TestsByPrice finds priced tests for a price-oriented query. Blood
// queries get a fast path toward CBC, then known test patterns, then
// the query's own keywords. If everything misses, the cheapest priced
// tests are returned so the user always sees some prices.
func (s *Service) TestsByPrice(ctx context.Context, query string) ([]catalog.Test, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	if strings.Contains(q, "blood") {
		tests, err := s.searchPriced(ctx, []string{"cbc", "complete blood", "blood count", "blood"})
		if err != nil {
			return nil, err
		}
		if len(tests) > 0 {
			return tests, nil
		}
	}

	for _, tp := range testPatterns {
		if !strings.Contains(q, tp.pattern) {
			continue
		}
		tests, err := s.searchPriced(ctx, tp.keywords)
		if err != nil {
			return nil, err
		}
		if len(tests) > 0 {
			return tests, nil
		}
	}

	var keywords []string
	for _, word := range strings.Fields(q) {
		if _, stop := priceStopwords[word]; !stop && len(word) > 2 {
			keywords = append(keywords, word)
		}
	}
	if len(keywords) > 0 {
		tests, err := s.searchPriced(ctx, keywords)
		if err != nil {
			return nil, err
		}
		if len(tests) > 0 {
			return tests, nil
		}
	}

	tests, err := s.catalog.PricedTests(ctx, DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("retrieval: priced tests: %w", err)
	}
	return tests, nil
}

// TestsForSymptoms maps symptom phrases to test keywords and retrieves
// the matching tests. Unknown symptoms fall back to the text's own
// meaningful tokens.
func (s *Service) TestsForSymptoms(ctx context.Context, symptoms string) ([]catalog.Test, error) {
	text := strings.ToLower(strings.TrimSpace(symptoms))

	var keywords []string
	for _, sm := range symptomMappings {
		if strings.Contains(text, sm.symptom) {
			keywords = append(keywords, sm.keywords...)
		}
	}
	if len(keywords) == 0 {
		for _, token := range strings.Fields(text) {
			if len(token) > meaningfulTokenLen {
				keywords = append(keywords, token)
			}
		}
	}
	// Cap keyword fan-out per lookup.
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	var (
		out  []catalog.Test
		seen = map[int64]struct{}{}
	)
	for _, keyword := range keywords {
		tests, err := s.catalog.SearchTests(ctx, keyword, DefaultLimit)
		if err != nil {
			return nil, fmt.Errorf("retrieval: search tests: %w", err)
		}
		for _, t := range tests {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
			if len(out) >= DefaultLimit {
				return out, nil
			}
		}
	}
	return out, nil
}

// Labs finds labs matching the query by name or location.
func (s *Service) Labs(ctx context.Context, query string, limit int) ([]catalog.Lab, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	labs, err := s.catalog.SearchLabs(ctx, strings.ToLower(strings.TrimSpace(query)), limit)
	if err != nil {
		return nil, fmt.Errorf("retrieval: search labs: %w", err)
	}
	return labs, nil
}

// LabsForTest returns the labs offering a test.
func (s *Service) LabsForTest(ctx context.Context, testID int64) ([]catalog.Lab, error) {
	labs, err := s.catalog.LabsForTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("retrieval: labs for test: %w", err)
	}
	return labs, nil
}

func (s *Service) searchPriced(ctx context.Context, keywords []string) ([]catalog.Test, error) {
	var (
		out  []catalog.Test
		seen = map[int64]struct{}{}
	)
	for _, keyword := range keywords {
		tests, err := s.catalog.SearchTests(ctx, keyword, DefaultLimit)
		if err != nil {
			return nil, fmt.Errorf("retrieval: search tests: %w", err)
		}
		for _, t := range tests {
			if !t.HasPrice() {
				continue
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
			if len(out) >= DefaultLimit {
				return out, nil
			}
		}
	}
	return out, nil
}
