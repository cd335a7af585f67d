package keysetpager

// DefaultMaxLimit is the upper bound on a page size used when Config.MaxLimit
// is not set.
const DefaultMaxLimit = 100

// IsWithinLimit reports whether count is an acceptable page size:
// 0 <= count <= maxLimit. Zero requests an empty page.
func IsWithinLimit(count int, maxLimit int) bool {
	return count >= 0 && count <= maxLimit
}

func checkLimit(option string, count int, maxLimit int) error {
	if maxLimit <= 0 {
		return invalidf("'%s' must be a positive integer, got %d", OptionMaxLimit, maxLimit)
	}

	if count < 0 {
		return invalidf("'%s' must not be negative, got %d", option, count)
	} else if !IsWithinLimit(count, maxLimit) {
		return invalidf("'%s' must not exceed %d, got %d", option, maxLimit, count)
	}

	return nil
}
