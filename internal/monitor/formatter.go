package monitor

import (
	"fmt"
	"time"
)

// FormatRate formats a rate value as "X.X/min".
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1f/min", rate)
}

// FormatLatency formats latency in seconds as "X.Xms" or "X.Xs".
func FormatLatency(latencySeconds float64) string {
	if latencySeconds < 1.0 {
		return fmt.Sprintf("%.1fms", latencySeconds*1000)
	}
	return fmt.Sprintf("%.1fs", latencySeconds)
}

// FormatPercentage formats a ratio (0-1) as percentage.
func FormatPercentage(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatMemory formats megabytes as "X.X MB" or "X.X GB".
func FormatMemory(mb float64) string {
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", mb/1024)
	}
	return fmt.Sprintf("%.1f MB", mb)
}

// FormatUptime formats d as "Xh Ym" or "Xm".
func FormatUptime(d time.Duration) string {
	hours := int64(d.Hours())
	minutes := int64(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
