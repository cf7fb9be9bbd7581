package handlers

// maxPageSize caps list page sizes. Clamping happens here so the limit echoed
// in list responses is the limit that was actually enforced.
const maxPageSize = 100

func clampLimit(n int) int {
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}
