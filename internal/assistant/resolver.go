package assistant

import (
	"strings"

	"github.com/medloop/practice-assistant/internal/roster"
)

// similarityThreshold is the minimum composite similarity for a name part
// to count as matching.
const similarityThreshold = 0.7

// phoneticAliasGroups lists common spelling variants that plain edit
// distance scores too low. Members of a group match each other at 0.9.
var phoneticAliasGroups = [][]string{
	{"younus", "yunas", "younis", "yunus", "yoonus"},
	{"mohammed", "mohamed", "muhammad", "muhammed", "mohammad"},
	{"sarah", "sara", "zara"},
	{"john", "jon", "jhon"},
	{"jeffrey", "geoffrey", "jeff", "geoff"},
	{"stephen", "steven"},
	{"catherine", "katherine", "kathryn", "cathryn"},
	{"aisha", "ayesha", "aysha"},
	{"sean", "shaun", "shawn"},
	{"rachel", "rachael"},
}

var phoneticAliases = buildAliasIndex(phoneticAliasGroups)

func buildAliasIndex(groups [][]string) map[string]int {
	index := make(map[string]int)
	for i, group := range groups {
		for _, name := range group {
			index[name] = i
		}
	}
	return index
}

// ResolvePatient matches an extracted name string to a roster patient.
// The first roster match in iteration order wins; no match is a normal
// "unresolved" outcome, never an error.
func ResolvePatient(name string, patients []roster.Patient) (*roster.Patient, bool) {
	for i := range patients {
		if nameMatches(name, patients[i].FirstName, patients[i].LastName) {
			return &patients[i], true
		}
	}
	return nil, false
}

// ResolveProvider matches an extracted name string to a roster provider.
func ResolveProvider(name string, providers []roster.Provider) (*roster.Provider, bool) {
	for i := range providers {
		if nameMatches(name, providers[i].FirstName, providers[i].LastName) {
			return &providers[i], true
		}
	}
	return nil, false
}

// nameMatches runs the cascading match strategies against one candidate;
// the first strategy that accepts wins.
func nameMatches(search, first, last string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	first = strings.ToLower(strings.TrimSpace(first))
	last = strings.ToLower(strings.TrimSpace(last))
	if search == "" {
		return false
	}
	full := strings.TrimSpace(first + " " + last)

	// 1. Exact full-name equality.
	if search == full {
		return true
	}

	// 2. Substring containment in either direction.
	if strings.Contains(full, search) || strings.Contains(search, full) {
		return true
	}

	// 3. Token overlap: every search word appears in the candidate name.
	searchTokens := strings.Fields(search)
	if allTokensContained(searchTokens, full) {
		return true
	}

	// 4. Composite similarity on first/last parts.
	switch len(searchTokens) {
	case 1:
		return nameSimilarity(searchTokens[0], first) >= similarityThreshold ||
			nameSimilarity(searchTokens[0], last) >= similarityThreshold
	default:
		searchFirst := searchTokens[0]
		searchLast := searchTokens[len(searchTokens)-1]
		if nameSimilarity(searchFirst, first) < similarityThreshold {
			return false
		}
		return searchLast == last || nameSimilarity(searchLast, last) >= similarityThreshold
	}
}

func allTokensContained(tokens []string, full string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(full, tok) {
			return false
		}
	}
	return true
}

// nameSimilarity scores two name parts: exact 1.0, containment 0.8,
// phonetic alias 0.9, shared three-letter prefix 0.7, else normalized
// edit-distance similarity.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}
	if ga, ok := phoneticAliases[a]; ok {
		if gb, ok := phoneticAliases[b]; ok && ga == gb {
			return 0.9
		}
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}
	if len(a) >= 3 && len(b) >= 3 && a[:3] == b[:3] {
		return 0.7
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return float64(maxLen-editDistance(a, b)) / float64(maxLen)
}

// editDistance is the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
