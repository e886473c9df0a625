package testutil

// ReferenceCombSums evaluates the cumulative comb recurrence the slow way:
// after every step t it re-sums, for each tap i, the sample that was i steps
// old at each earlier step (0 before the stream reached it). The result has
// one row of maxDelay+1 values per input sample.
func ReferenceCombSums(samples []float64, maxDelay int) [][]float64 {
	rows := make([][]float64, len(samples))
	for t := range samples {
		row := make([]float64, maxDelay+1)
		for i := range row {
			for step := 0; step <= t; step++ {
				if j := step - i; j >= 0 {
					row[i] += samples[j]
				}
			}
		}
		rows[t] = row
	}
	return rows
}
