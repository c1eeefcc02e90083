package engine

// DetectDuplicateNames reports every name that occurs more than once, in order
// of first occurrence, with all of its positions. maxIssues <= 0 means unlimited.
func DetectDuplicateNames(names []string, maxIssues int) []Duplicate {
	positions := make(map[string][]int, len(names))
	var order []string
	for i, n := range names {
		if _, seen := positions[n]; !seen {
			order = append(order, n)
		}
		positions[n] = append(positions[n], i)
	}
	var issues []Duplicate
	for _, n := range order {
		idx := positions[n]
		if len(idx) < 2 {
			continue
		}
		issues = append(issues, Duplicate{Name: n, Indices: idx})
		if maxIssues > 0 && len(issues) >= maxIssues {
			break
		}
	}
	return issues
}
