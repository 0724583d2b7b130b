package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRunPattern  = regexp.MustCompile(`\d+`)
	listSplitPattern = regexp.MustCompile(`[,;]|(?:\s+e\s+)|(?:\s+ou\s+)`)
)

// ExtractNumber returns the first run of decimal digits found in the text,
// parsed as a base-10 integer. Decimals and signs are not handled: the
// first digit run wins, so "1.75" yields 1.
func ExtractNumber(text string) (int, bool) {
	match := digitRunPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ExtractSex matches the text against ordered synonym sets and returns
// "masculino", "feminino" or "outro". First matching category wins.
func ExtractSex(text string) (string, bool) {
	normalized := strings.TrimSpace(strings.ToLower(text))

	if strings.Contains(normalized, "masc") ||
		strings.Contains(normalized, "homem") ||
		strings.Contains(normalized, "menino") {
		return "masculino", true
	}
	if strings.Contains(normalized, "fem") ||
		strings.Contains(normalized, "mulher") ||
		strings.Contains(normalized, "menina") {
		return "feminino", true
	}
	if strings.Contains(normalized, "outro") ||
		strings.Contains(normalized, "não binário") ||
		strings.Contains(normalized, "nb") {
		return "outro", true
	}

	return "", false
}

// ExtractActivityLevel matches the text against the four fixed activity
// synonym sets, checked in order sedentário, leve, moderado, intenso.
func ExtractActivityLevel(text string) (string, bool) {
	normalized := strings.TrimSpace(strings.ToLower(text))

	if strings.Contains(normalized, "sedent") ||
		strings.Contains(normalized, "nenhum") ||
		strings.Contains(normalized, "pouco") {
		return "sedentário", true
	}
	if strings.Contains(normalized, "leve") ||
		strings.Contains(normalized, "1-3") ||
		strings.Contains(normalized, "pouco exerc") {
		return "leve", true
	}
	if strings.Contains(normalized, "moderad") ||
		strings.Contains(normalized, "3-5") ||
		strings.Contains(normalized, "regular") {
		return "moderado", true
	}
	if strings.Contains(normalized, "intens") ||
		strings.Contains(normalized, "pesado") ||
		strings.Contains(normalized, "6-7") ||
		strings.Contains(normalized, "muito") {
		return "intenso", true
	}

	return "", false
}

// ExtractList splits a free-text answer into items. A bare "none" answer
// ("nenhuma", "nenhum", "não", "não tenho") yields an empty list; otherwise
// the text is split on commas, semicolons and the conjunctions " e "/" ou ",
// keeping the original case and order of the pieces.
func ExtractList(text string) []string {
	normalized := strings.TrimSpace(strings.ToLower(text))

	switch normalized {
	case "nenhuma", "nenhum", "não", "não tenho":
		return []string{}
	}

	pieces := listSplitPattern.Split(text, -1)
	items := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		item := strings.TrimSpace(piece)
		if item == "" {
			continue
		}
		switch strings.ToLower(item) {
		case "e", "ou", "também":
			continue
		}
		items = append(items, item)
	}

	return items
}
