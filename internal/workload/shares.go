package workload

import (
	"sort"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// defaultShareWeights splits ten parts among co-authors by position.
var defaultShareWeights = map[int][]float64{
	1: {10},
	2: {6, 4},
	3: {4, 3, 3},
	4: {4, 2, 2, 2},
	5: {3, 2, 2, 2, 1},
	6: {3, 2, 2, 1, 1, 1},
}

// ShareWeights returns the default weights for n co-authors, summing to 10.
func ShareWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if weights, ok := defaultShareWeights[n]; ok {
		out := make([]float64, n)
		copy(out, weights)
		return out
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 10 / float64(n)
	}
	return out
}

// SortMembers orders members by position then id.
func SortMembers(members []models.ResearchMember) []models.ResearchMember {
	sorted := make([]models.ResearchMember, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order == sorted[j].Order {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// Shares maps member id to its fraction of the project. Positive explicit
// ratios take precedence; members without one get zero. Without explicit
// ratios the default weights apply by position.
func Shares(members []models.ResearchMember) map[string]float64 {
	sorted := SortMembers(members)
	shares := make(map[string]float64, len(sorted))
	if len(sorted) == 0 {
		return shares
	}

	explicit := false
	total := 0.0
	for _, member := range sorted {
		if member.ShareRatio != nil && *member.ShareRatio > 0 {
			explicit = true
			total += *member.ShareRatio
		}
	}

	switch {
	case explicit && total > 0:
		for _, member := range sorted {
			ratio := 0.0
			if member.ShareRatio != nil && *member.ShareRatio > 0 {
				ratio = *member.ShareRatio
			}
			shares[member.ID] = ratio / total
		}
	case explicit:
		equal := 1 / float64(len(sorted))
		for _, member := range sorted {
			shares[member.ID] = equal
		}
	default:
		weights := ShareWeights(len(sorted))
		for i, member := range sorted {
			shares[member.ID] = weights[i] / 10
		}
	}
	return shares
}

// DistributeShares overwrites every member's ShareRatio with its default
// weight normalized to a fraction (6:4 becomes 0.6 and 0.4).
func DistributeShares(members []models.ResearchMember) []models.ResearchMember {
	sorted := SortMembers(members)
	weights := ShareWeights(len(sorted))
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		total = 1
	}
	for i := range sorted {
		ratio := weights[i] / total
		sorted[i].ShareRatio = &ratio
	}
	return sorted
}
