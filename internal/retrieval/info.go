package retrieval

import (
	"context"
	"fmt"

	"github.com/labease/labease-platform/internal/catalog"
)

// TestInfo is a presentation-ready view of a test: description and
// price made printable, plus up to three labs offering it.
type TestInfo struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Labs        []string `json:"labs"`
}

// LabInfo is a presentation-ready view of a lab.
type LabInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// TestInfo fills in the display fields for a test.
func (s *Service) TestInfo(ctx context.Context, t catalog.Test) (TestInfo, error) {
	info := TestInfo{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Price:       "Price not available",
	}
	if info.Description == "" {
		info.Description = "No description available"
	}
	if t.HasPrice() {
		info.Price = t.Price.StringFixed(2)
	}

	labs, err := s.catalog.LabsForTest(ctx, t.ID)
	if err != nil {
		return TestInfo{}, fmt.Errorf("retrieval: labs for test: %w", err)
	}
	if len(labs) > 3 {
		labs = labs[:3]
	}
	for _, l := range labs {
		info.Labs = append(info.Labs, l.Name)
	}
	return info, nil
}

// LabInfo fills in the display fields for a lab.
func (s *Service) LabInfo(l catalog.Lab) LabInfo {
	return LabInfo{
		ID:    l.ID,
		Name:  l.Name,
		City:  l.City,
		State: l.State,
		Phone: l.ContactPhone,
		Email: l.ContactEmail,
	}
}
