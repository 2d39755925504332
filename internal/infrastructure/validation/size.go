package validation

import "fmt"

// SizeRatioValidator judges converted output against a fixed byte floor and
// an output/input size ratio threshold. Both checks are pure; negative or
// unknown sizes are coerced to zero instead of failing.
type SizeRatioValidator struct {
	minBytes  int64
	threshold float64
}

func NewSizeRatioValidator(minBytes int64, threshold float64) *SizeRatioValidator {
	if minBytes < 0 {
		minBytes = 0
	}
	if threshold < 0 {
		threshold = 0
	}
	return &SizeRatioValidator{minBytes: minBytes, threshold: threshold}
}

// CheckSize fails when a minimum is configured and the output is smaller.
func (v *SizeRatioValidator) CheckSize(outputBytes int64) (bool, string) {
	if outputBytes < 0 {
		outputBytes = 0
	}
	if v.minBytes > 0 && outputBytes < v.minBytes {
		return false, fmt.Sprintf("converted file size %s is below the minimum %s",
			HumanSize(outputBytes), HumanSize(v.minBytes))
	}
	return true, ""
}

// CheckRatio fails when output/input falls below the threshold. The check
// only applies when the input size is positive; a ratio exactly at the
// threshold passes.
func (v *SizeRatioValidator) CheckRatio(outputBytes, inputBytes int64) (bool, string) {
	if outputBytes < 0 {
		outputBytes = 0
	}
	if inputBytes <= 0 {
		return true, ""
	}
	ratio := float64(outputBytes) / float64(inputBytes)
	if ratio < v.threshold {
		return false, fmt.Sprintf("conversion ratio %.2f is below the threshold %.2f (%s from %s)",
			ratio, v.threshold, HumanSize(outputBytes), HumanSize(inputBytes))
	}
	return true, ""
}

// HumanSize renders byte counts the way people read them: plain bytes below
// 1KB, one decimal above ("12B", "1.2KB").
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}
