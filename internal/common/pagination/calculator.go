package pagination

// HasMore reports whether items remain after a window starting at offset
// that returned `returned` items out of total.
func HasMore(total int64, offset, returned int) bool {
	return int64(offset)+int64(returned) < total
}

// NextOffset returns the offset of the following window, or -1 when none remains.
func NextOffset(total int64, offset, returned int) int {
	if !HasMore(total, offset, returned) {
		return -1
	}
	return offset + returned
}
