package services

import (
	"testing"

	"shop-analytics-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestKMeansDeterministic(t *testing.T) {
	values := []float64{1, 2, 3, 10, 11, 12, 50, 51, 100, 101}

	first, err := kMeans(values, 5, 42)
	assert.NoError(t, err)
	second, err := kMeans(values, 5, 42)
	assert.NoError(t, err)
	assert.Equal(t, first, second, "same seed reproduces the same assignments")
}

func TestKMeansDegenerateInput(t *testing.T) {
	_, err := kMeans([]float64{1, 1, 2, 2, 3}, 5, 42)
	assert.Error(t, err, "fewer distinct values than clusters")

	_, err = kMeans([]float64{1, 2, 3}, 5, 42)
	assert.Error(t, err)
}

func TestSortedClusterRanksFollowValues(t *testing.T) {
	service := NewSegmentationService()
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	ranks, err := service.SortedCluster(values, true, 42)
	assert.NoError(t, err)
	assert.Len(t, ranks, len(values))

	// Ascending: a larger value never gets a smaller rank.
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, ranks[i], ranks[i-1])
	}
	assert.Equal(t, 1, ranks[0])
	assert.Equal(t, 5, ranks[len(ranks)-1])

	// Descending reverses the tier numbering.
	descRanks, err := service.SortedCluster(values, false, 42)
	assert.NoError(t, err)
	for i := range ranks {
		assert.Equal(t, 6-ranks[i], descRanks[i])
	}
}

func testCustomers() []models.Customer {
	customers := make([]models.Customer, 10)
	for i := range customers {
		customers[i] = models.Customer{
			CustomerID: string(rune('A' + i)),
			Recency:    10*i + 1,
			Orders:     i + 1,
			Revenue:    float64(100 * (i + 1)),
			SKUs:       i + 1,
		}
	}
	return customers
}

func TestGetRFMSegments(t *testing.T) {
	service := NewSegmentationService()
	customers := testCustomers()

	segments, err := service.GetRFMSegments(customers, 42)
	assert.NoError(t, err)
	assert.Len(t, segments, len(customers))

	// The most recent customer takes recency tier 5; the heaviest buyer
	// takes frequency/monetary tier 5.
	assert.Equal(t, 5, segments[0].R)
	assert.Equal(t, 1, segments[len(segments)-1].R)
	assert.Equal(t, 5, segments[len(segments)-1].F)
	assert.Equal(t, 5, segments[len(segments)-1].M)
	assert.Equal(t, 5, segments[len(segments)-1].H)

	for _, seg := range segments {
		assert.Equal(t, seg.R+seg.F+seg.M, seg.RFMScore)
		expected := string(rune('0'+seg.R)) + string(rune('0'+seg.F)) + string(rune('0'+seg.M))
		assert.Equal(t, expected, seg.RFM)
		assert.NotEmpty(t, seg.SegmentName)
	}
}

func TestGetRFMSegmentsDegenerate(t *testing.T) {
	service := NewSegmentationService()
	customers := testCustomers()[:3]

	_, err := service.GetRFMSegments(customers, 42)
	assert.Error(t, err, "fewer than five distinct values cannot be clustered")
}

func TestLabelRFMSegment(t *testing.T) {
	cases := map[int]string{
		111: "Risky",
		155: "Risky",
		211: "Hold and improve",
		255: "Hold and improve",
		311: "Potential loyal",
		353: "Potential loyal",
		354: "Loyal",
		454: "Loyal",
		511: "Loyal",
		535: "Loyal",
		541: "Loyal",
		455: "Star",
		542: "Star",
		555: "Star",
		538: "Other",
	}
	for rfm, expected := range cases {
		assert.Equal(t, expected, labelRFMSegment(rfm), "rfm %d", rfm)
	}
}
