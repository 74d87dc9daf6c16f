package layout

// GridOrigins returns the start positions along one axis for cells of the given size,
// stepping by step from start. A cell is only kept while pos+size < bound, so a cell
// that would touch or cross the bound is dropped rather than clipped.
func GridOrigins(start, step, size, bound int) []int {
	if step <= 0 || size <= 0 {
		return nil
	}

	var origins []int
	for pos := start; pos+size < bound; pos += step {
		origins = append(origins, pos)
	}
	return origins
}
