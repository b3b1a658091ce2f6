package panel

// BuildSchedule returns the order in which the k bitplanes are shown during
// one refresh. The sequence has 2^k-1 slots and plane p (0 = least
// significant) occupies 2^p of them, interleaved so that planes of very
// different weight are spread evenly.
//
// Each slot goes to the plane with the smallest accumulated weight, ties
// going to the most significant plane, and that plane's weight then grows
// by 2^(k-p).
func BuildSchedule(k int) []int {
	if k <= 0 {
		return nil
	}
	times := make([]int, k)
	slots := make([]int, (1<<k)-1)
	for i := range slots {
		ch := 0
		for j := 0; j < k; j++ {
			if times[j] <= times[ch] {
				ch = j
			}
		}
		slots[i] = ch
		times[ch] += 1 << (k - ch)
	}
	return slots
}
