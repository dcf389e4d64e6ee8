package sqlfmt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NoDistributionData is shown when a field carries no histogram payload.
const NoDistributionData = "No distribution data available"

// histogramBarWidth is the maximum bar length in block characters.
const histogramBarWidth = 15

// FormatHistogram renders a histogram JSON payload as one line per bucket:
// "<label>: <count> (<percent>%) <bar>". Percent and bar length are relative
// to the largest count. Two payload forms are accepted: an object with
// parallel bins/counts arrays, and an array of objects keyed by bin or range
// plus count or frequency. Unparseable input is returned as-is.
func FormatHistogram(histogram string) string {
	if histogram == "" {
		return NoDistributionData
	}

	var byBins struct {
		Bins   []any     `json:"bins"`
		Counts []float64 `json:"counts"`
	}
	if err := json.Unmarshal([]byte(histogram), &byBins); err == nil && len(byBins.Bins) > 0 && len(byBins.Counts) > 0 {
		maxCount := 0.0
		for _, c := range byBins.Counts {
			maxCount = max(maxCount, c)
		}
		lines := make([]string, 0, len(byBins.Bins))
		for i, bin := range byBins.Bins {
			var count float64
			if i < len(byBins.Counts) {
				count = byBins.Counts[i]
			}
			lines = append(lines, histogramLine(labelString(bin), count, maxCount))
		}
		return strings.Join(lines, "\n")
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(histogram), &items); err == nil && len(items) > 0 {
		maxCount := 0.0
		for _, item := range items {
			maxCount = max(maxCount, itemCount(item))
		}
		lines := make([]string, 0, len(items))
		for i, item := range items {
			label := labelString(item["bin"])
			if label == "" {
				label = labelString(item["range"])
			}
			if label == "" {
				label = fmt.Sprintf("Bin %d", i+1)
			}
			lines = append(lines, histogramLine(label, itemCount(item), maxCount))
		}
		return strings.Join(lines, "\n")
	}

	return histogram
}

func histogramLine(label string, count, maxCount float64) string {
	bar := 0
	pct := "0.0"
	if maxCount > 0 {
		bar = int(count / maxCount * histogramBarWidth)
		bar = min(max(bar, 0), histogramBarWidth)
		pct = fmt.Sprintf("%.1f", count/maxCount*100)
	}
	return fmt.Sprintf("%s: %s (%s%%) %s", label, formatCount(count), pct, strings.Repeat("█", bar))
}

func itemCount(item map[string]any) float64 {
	if v, ok := item["count"].(float64); ok {
		return v
	}
	if v, ok := item["frequency"].(float64); ok {
		return v
	}
	return 0
}

func labelString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatCount(t)
	default:
		return ""
	}
}

// formatCount prints integral counts without a decimal point.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
