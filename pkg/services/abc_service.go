package services

import (
	"fmt"
	"sort"

	"shop-analytics-api/pkg/models"
)

// ABCPolicy selects how entities outside the contributing set are handled.
type ABCPolicy int

const (
	// PolicyWindowed treats Activity as a recency measure: entities beyond
	// the activity limit are excluded from the cumulative ranking and
	// assigned class D, all sharing one rank after the in-window entities.
	PolicyWindowed ABCPolicy = iota
	// PolicyForceNoZero keeps every entity with Activity > 0 in the A/B/C
	// ranking and reserves D for zero-activity entities only.
	PolicyForceNoZero
)

// ABCService ranks entities by cumulative revenue share and assigns
// Pareto classes.
type ABCService struct{}

// NewABCService creates a new ABCService.
func NewABCService() *ABCService {
	return &ABCService{}
}

// Classify sorts entities by metric descending, computes each entity's
// cumulative percentage of the total, and assigns classes on the 80/90
// thresholds. Rank is the dense rank of the cumulative percentage; excluded
// entities (per policy) share the single rank after the last contributor.
func (s *ABCService) Classify(entities []models.ABCEntity, policy ABCPolicy, activityLimit float64) ([]models.ABCSegment, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("entities are empty")
	}

	var in, out []models.ABCEntity
	for _, e := range entities {
		switch policy {
		case PolicyWindowed:
			if e.Activity <= activityLimit {
				in = append(in, e)
			} else {
				out = append(out, e)
			}
		case PolicyForceNoZero:
			if e.Activity > 0 {
				in = append(in, e)
			} else {
				out = append(out, e)
			}
		default:
			return nil, fmt.Errorf("unknown ABC policy %d", policy)
		}
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("no entities inside the activity window")
	}

	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Metric > in[j].Metric
	})

	var total float64
	for _, e := range in {
		total += e.Metric
	}
	if total == 0 {
		return nil, fmt.Errorf("total metric is zero, cumulative shares are undefined")
	}

	segments := make([]models.ABCSegment, 0, len(entities))
	var cumulative float64
	rank := 0
	prev := -1.0
	for _, e := range in {
		cumulative += e.Metric
		pct := cumulative / total * 100
		if pct != prev {
			rank++
			prev = pct
		}
		p := pct
		segments = append(segments, models.ABCSegment{
			EntityID:             e.ID,
			Revenue:              e.Metric,
			CumulativePercentage: &p,
			Class:                classifyPercentage(pct),
			Rank:                 rank,
		})
	}

	// Excluded entities all share one rank value.
	outRank := len(in) + 1
	for _, e := range out {
		segments = append(segments, models.ABCSegment{
			EntityID: e.ID,
			Revenue:  e.Metric,
			Class:    "D",
			Rank:     outRank,
		})
	}
	return segments, nil
}

// GetABCSegments classifies customers who purchased within the last
// months*30 days; lapsed customers fall into class D.
func (s *ABCService) GetABCSegments(customers []models.Customer, months int) ([]models.ABCSegment, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", ErrInvalidInput, months)
	}
	entities := make([]models.ABCEntity, len(customers))
	for i, c := range customers {
		entities[i] = models.ABCEntity{
			ID:       c.CustomerID,
			Metric:   c.Revenue,
			Activity: float64(c.Recency),
		}
	}
	return s.Classify(entities, PolicyWindowed, float64(months*30))
}

// GetProductABCSegments classifies SKUs by revenue contribution. Products
// with no sold units are the zero-activity tier.
func (s *ABCService) GetProductABCSegments(products []models.Product) ([]models.ABCSegment, error) {
	entities := make([]models.ABCEntity, len(products))
	for i, p := range products {
		entities[i] = models.ABCEntity{
			ID:       p.SKU,
			Metric:   p.Revenue,
			Activity: float64(p.Orders),
		}
	}
	return s.Classify(entities, PolicyForceNoZero, 0)
}

func classifyPercentage(pct float64) string {
	switch {
	case pct > 0 && pct <= 80:
		return "A"
	case pct > 80 && pct <= 90:
		return "B"
	default:
		return "C"
	}
}
