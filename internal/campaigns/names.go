package campaigns

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Names is the privacy split of a campaign title. DisplayName is safe to
// publish: the first name plus family initials.
type Names struct {
	DisplayName string
	FullName    string
	FirstName   string
}

var titleStopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`HELP SUPPORT DONATE URGENT EMERGENCY SAVE ASSIST
		EVACUATE REBUILD ESCAPE SURVIVE FAMILY GAZA PALESTINE PLEASE KINDLY
		FUNDRAISER CAMPAIGN PROJECT THE FOR TO AND WITH FROM OUT OF IN WAR
		GENOCIDE FAMILIES NEED NEEDS YOUR MY OUR CHILDREN LIVES LIFE`) {
		titleStopwords[w] = struct{}{}
	}
}

var (
	titlePrefixRe = regexp.MustCompile(`(?i)^(?:Urgent|Emergency|Please Help|Help|Support)[:\s]+`)
	namePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`^([A-Z][a-zA-Z\-']+(?:\s+[A-Z][a-zA-Z\-']+){0,3}?)\s+(?:and|with|&)\s+(?:(?:his|her|their|my)\s+)?(?:family|children|wife|kids|son|daughter)`),
		regexp.MustCompile(`(?:Help|Support|Evacuate|Save|Assist)\s+([A-Z][a-zA-Z\-']+(?:\s+[A-Z][a-zA-Z\-']+){0,3}?)(?:\s+and|\s+family|\s+to|\s+rebuild|\s+escape|\s+survive|$)`),
		regexp.MustCompile(`^([A-Z][a-zA-Z\-']+(?:\s+[A-Z][a-zA-Z\-']+){0,2}?)['’]s\s+family`),
		regexp.MustCompile(`(?:the|The)\s+([A-Z][a-zA-Z\-']+(?:\s+[A-Z][a-zA-Z\-']+){0,2}?)\s+[Ff]amily`),
	}
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_.]`)
)

func isStopword(s string) bool {
	_, ok := titleStopwords[strings.ToUpper(s)]
	return ok
}

// ExtractNames finds the beneficiary name in a campaign title.
func ExtractNames(title string) Names {
	if strings.TrimSpace(title) == "" {
		return Names{DisplayName: "Anonymous"}
	}
	clean := strings.TrimSpace(titlePrefixRe.ReplaceAllString(title, ""))

	full := ""
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if !isStopword(candidate) && len(candidate) > 2 {
			full = candidate
			break
		}
	}
	if full == "" {
		full = capitalizedRun(clean)
	}

	parts := strings.Fields(full)
	if len(parts) > 0 && isStopword(parts[0]) {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return Names{DisplayName: "Family"}
	}

	first := parts[0]
	display := first
	if len(parts) > 1 {
		initials := make([]string, 0, 2)
		for _, p := range parts[1:min(len(parts), 3)] {
			if strings.HasSuffix(p, ".") {
				initials = append(initials, p)
				continue
			}
			r, _ := utf8.DecodeRuneInString(p)
			initials = append(initials, string(r)+".")
		}
		display = first + " " + strings.Join(initials, " ")
	}
	return Names{DisplayName: display, FullName: strings.Join(parts, " "), FirstName: first}
}

// capitalizedRun returns up to four leading capitalized non-stopwords,
// stopping at the first gap once a run has started.
func capitalizedRun(title string) string {
	var run []string
	for _, word := range strings.Fields(title) {
		w := nonWordRe.ReplaceAllString(word, "")
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(r) && !isStopword(w) && utf8.RuneCountInString(w) > 1 {
			run = append(run, w)
			if len(run) >= 4 {
				break
			}
			continue
		}
		if len(run) > 0 {
			break
		}
	}
	return strings.Join(run, " ")
}
