package services

import (
	"fmt"
	"sort"

	"shop-analytics-api/pkg/models"
)

// rfmClusters is the number of ordinal tiers used throughout RFMH scoring.
const rfmClusters = 5

// SegmentationService assigns rank-ordered cluster scores and RFMH segments.
type SegmentationService struct{}

// NewSegmentationService creates a new SegmentationService.
func NewSegmentationService() *SegmentationService {
	return &SegmentationService{}
}

// SortedCluster partitions one metric into rfmClusters ordinal tiers whose
// tier number reflects the rank of the tier's mean value, not the arbitrary
// cluster id the fit produced. With ascending=true, tier 1 holds the lowest
// cluster mean and tier 5 the highest; ascending=false reverses the order.
// Mean ties give the higher rank to the earlier-encountered cluster id.
func (s *SegmentationService) SortedCluster(values []float64, ascending bool, seed int64) ([]int, error) {
	assignments, err := kMeans(values, rfmClusters, seed)
	if err != nil {
		return nil, err
	}

	type clusterStat struct {
		id    int
		mean  float64
		order int // first-encounter order of the cluster id
	}

	sums := make([]float64, rfmClusters)
	counts := make([]int, rfmClusters)
	encounter := make([]int, rfmClusters)
	for i := range encounter {
		encounter[i] = -1
	}
	seen := 0
	for i, cluster := range assignments {
		if encounter[cluster] == -1 {
			encounter[cluster] = seen
			seen++
		}
		sums[cluster] += values[i]
		counts[cluster]++
	}

	stats := make([]clusterStat, 0, rfmClusters)
	for c := 0; c < rfmClusters; c++ {
		if counts[c] == 0 {
			continue
		}
		stats = append(stats, clusterStat{
			id:    c,
			mean:  sums[c] / float64(counts[c]),
			order: encounter[c],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].mean != stats[j].mean {
			if ascending {
				return stats[i].mean < stats[j].mean
			}
			return stats[i].mean > stats[j].mean
		}
		// Earlier-encountered cluster takes the higher rank, i.e. the
		// later position.
		return stats[i].order > stats[j].order
	})

	rankOf := make(map[int]int, len(stats))
	for pos, st := range stats {
		rankOf[st.id] = pos + 1
	}

	ranks := make([]int, len(assignments))
	for i, cluster := range assignments {
		ranks[i] = rankOf[cluster]
	}
	return ranks, nil
}

// GetRFMSegments scores every customer on recency, frequency, monetary and
// heterogeneity, then derives the composite RFM value and segment label.
// Recency is clustered descending so that tier 5 is the most recent customer.
func (s *SegmentationService) GetRFMSegments(customers []models.Customer, seed int64) ([]models.RFMSegment, error) {
	if len(customers) == 0 {
		return nil, fmt.Errorf("customers are empty")
	}

	recency := make([]float64, len(customers))
	frequency := make([]float64, len(customers))
	monetary := make([]float64, len(customers))
	heterogeneity := make([]float64, len(customers))
	for i, c := range customers {
		recency[i] = float64(c.Recency)
		frequency[i] = float64(c.Orders)
		monetary[i] = c.Revenue
		heterogeneity[i] = float64(c.SKUs)
	}

	r, err := s.SortedCluster(recency, false, seed)
	if err != nil {
		return nil, fmt.Errorf("recency clustering: %w", err)
	}
	f, err := s.SortedCluster(frequency, true, seed)
	if err != nil {
		return nil, fmt.Errorf("frequency clustering: %w", err)
	}
	m, err := s.SortedCluster(monetary, true, seed)
	if err != nil {
		return nil, fmt.Errorf("monetary clustering: %w", err)
	}
	h, err := s.SortedCluster(heterogeneity, true, seed)
	if err != nil {
		return nil, fmt.Errorf("heterogeneity clustering: %w", err)
	}

	segments := make([]models.RFMSegment, len(customers))
	for i, c := range customers {
		rfm := fmt.Sprintf("%d%d%d", r[i], f[i], m[i])
		segments[i] = models.RFMSegment{
			CustomerID:      c.CustomerID,
			AcquisitionDate: c.FirstOrderDate,
			RecencyDate:     c.LastOrderDate,
			Recency:         c.Recency,
			Frequency:       c.Orders,
			Monetary:        c.Revenue,
			Heterogeneity:   c.SKUs,
			Tenure:          c.Tenure,
			R:               r[i],
			F:               f[i],
			M:               m[i],
			H:               h[i],
			RFM:             rfm,
			RFMScore:        r[i] + f[i] + m[i],
			SegmentName:     labelRFMSegment(r[i]*100 + f[i]*10 + m[i]),
		}
	}
	return segments, nil
}

// labelRFMSegment maps a three-digit RFM value onto its qualitative segment.
func labelRFMSegment(rfm int) string {
	switch {
	case rfm >= 111 && rfm <= 155:
		return "Risky"
	case rfm >= 211 && rfm <= 255:
		return "Hold and improve"
	case rfm >= 311 && rfm <= 353:
		return "Potential loyal"
	case (rfm >= 354 && rfm <= 454) || (rfm >= 511 && rfm <= 535) || rfm == 541:
		return "Loyal"
	case rfm == 455 || (rfm >= 542 && rfm <= 555):
		return "Star"
	default:
		return "Other"
	}
}
