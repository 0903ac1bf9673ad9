package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// levenshtein computes the Levenshtein edit distance between two strings.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Use a single row plus a prev value to reduce allocation.
	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= la; i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[lb]
}

// suggestCommand finds the closest command name to the unknown input.
// Typos within edit distance 3 win; otherwise an abbreviation such as
// "recs" is matched as a subsequence. Returns "" when nothing is close.
func suggestCommand(unknown string, commands []string) string {
	unknown = strings.ToLower(unknown)
	bestDist := 4
	bestMatch := ""
	for _, cmd := range commands {
		d := levenshtein(unknown, strings.ToLower(cmd))
		if d < bestDist {
			bestDist = d
			bestMatch = cmd
		}
	}
	if bestMatch != "" {
		return bestMatch
	}

	lowered := make([]string, len(commands))
	for i, cmd := range commands {
		lowered[i] = strings.ToLower(cmd)
	}
	if matches := fuzzy.Find(unknown, lowered); len(matches) > 0 {
		return commands[matches[0].Index]
	}
	return ""
}

// suggestFlag finds the closest flag name to the unknown input.
// Strips leading dashes from both the input and the known flags for comparison,
// but returns the match with its original prefix.
func suggestFlag(unknown string, flags []string) string {
	stripped := strings.ToLower(strings.TrimLeft(unknown, "-"))
	if stripped == "" {
		return ""
	}
	bestDist := 4
	bestMatch := ""
	for _, f := range flags {
		d := levenshtein(stripped, strings.ToLower(strings.TrimLeft(f, "-")))
		if d < bestDist {
			bestDist = d
			bestMatch = f
		}
	}
	return bestMatch
}
