package persona

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// NameMatcher is one strategy for pulling a person's name out of a chat
// message. Matchers are tried in priority order; the first success wins.
type NameMatcher interface {
	Match(message string) (name string, ok bool)
}

// particles that may trail an extracted name. A single trailing particle is
// stripped; stripping is idempotent.
const trailingParticles = "은는이가을를의"

var honorificSuffixes = []string{"대표님", "님", "씨"}

var (
	hangulRunRe = regexp.MustCompile(`[가-힣]+`)
	inflectedRe = regexp.MustCompile(`([가-힣]{2,3})이(?:가|는|께|야|님|씨|대표님)?`)
	bareNameRe  = regexp.MustCompile(`[가-힣]{2,3}`)
)

// honorificMatcher matches a 2-4 syllable name carrying an honorific suffix
// (님/씨/대표님). The suffix is excluded from the name. 대표님 is checked
// before 님 so the longer suffix wins.
type honorificMatcher struct{}

func (honorificMatcher) Match(message string) (string, bool) {
	for _, run := range hangulRunRe.FindAllString(message, -1) {
		for _, suffix := range honorificSuffixes {
			trimmed := strings.TrimSuffix(run, suffix)
			if trimmed == run {
				continue
			}
			if n := utf8.RuneCountInString(trimmed); n >= 2 && n <= 4 {
				return trimmed, true
			}
		}
	}
	return "", false
}

// inflectedMatcher matches a given name inflected with the "이" suffix
// (e.g. 재권이가) and strips the suffix plus any grammatical particle.
type inflectedMatcher struct{}

func (inflectedMatcher) Match(message string) (string, bool) {
	m := inflectedRe.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// bareMatcher matches a bare 2-3 syllable Hangul run.
type bareMatcher struct{}

func (bareMatcher) Match(message string) (string, bool) {
	run := bareNameRe.FindString(message)
	if run == "" {
		return "", false
	}
	return run, true
}

func defaultMatchers() []NameMatcher {
	return []NameMatcher{honorificMatcher{}, inflectedMatcher{}, bareMatcher{}}
}

// StripParticle removes a single trailing grammatical particle
// (은/는/이/가/을/를/의) from a name, if present.
func StripParticle(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return name
	}
	if strings.ContainsRune(trailingParticles, runes[len(runes)-1]) {
		return string(runes[:len(runes)-1])
	}
	return name
}
