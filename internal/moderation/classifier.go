package moderation

import (
	"regexp"
	"strings"
)

type Reason string

const (
	ReasonNone             Reason = "none"
	ReasonTelegramLink     Reason = "telegram_link"
	ReasonTelegramDeepLink Reason = "telegram_deeplink"
	ReasonUsernameMention  Reason = "username_mention"
	ReasonSpamPhrase       Reason = "spam_phrase"
	ReasonCryptoSpam       Reason = "crypto_spam"
)

// Verdict describes whether and why a message was flagged.
type Verdict struct {
	IsSpam           bool
	Reason           Reason
	MatchedFragments []string
}

// AllowSet holds handles that are exempt from link and mention detection.
// Handles are stored lowercased with any leading @ stripped.
type AllowSet map[string]struct{}

func NewAllowSet(handles ...string) AllowSet {
	set := make(AllowSet, len(handles))
	for _, handle := range handles {
		handle = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
		if handle == "" {
			continue
		}
		set[handle] = struct{}{}
	}
	return set
}

func (s AllowSet) Contains(handle string) bool {
	if s == nil {
		return false
	}
	_, ok := s[strings.ToLower(strings.TrimPrefix(handle, "@"))]
	return ok
}

var (
	telegramLinkRe     = regexp.MustCompile(`(?i)\b(?:t|telegram)\.me/(@?\w+)`)
	telegramDeepLinkRe = regexp.MustCompile(`(?i)tg://(?:user\?id=\d+|resolve\?domain=\w+)`)
	usernameMentionRe  = regexp.MustCompile(`@(\w{3,})`)
)

var spamPhrases = []string{
	"join my channel",
	"join our channel",
	"subscribe to my",
	"subscribe to our",
	"follow for more",
	"link in bio",
	"check out my channel",
	"private channel",
}

var cryptoPhrases = []string{
	"earn money",
	"free crypto",
	"investment opportunity",
	"dm for details",
	"passive income",
	"guaranteed profit",
	"double your money",
}

// Classify inspects message text for known spam shapes. Every category is
// evaluated, the verdict reason reports the first category that produced a
// non-exempted match. Malformed or empty input is never an error, it just
// classifies as clean.
func Classify(text string, allowed AllowSet) Verdict {
	verdict := Verdict{Reason: ReasonNone, MatchedFragments: []string{}}
	if strings.TrimSpace(text) == "" {
		return verdict
	}

	seen := make(map[string]struct{})
	addFragment := func(fragment string) {
		if _, dup := seen[fragment]; dup {
			return
		}
		seen[fragment] = struct{}{}
		verdict.MatchedFragments = append(verdict.MatchedFragments, fragment)
	}
	flag := func(reason Reason) {
		if !verdict.IsSpam {
			verdict.IsSpam = true
			verdict.Reason = reason
		}
	}

	for _, match := range telegramLinkRe.FindAllStringSubmatch(text, -1) {
		if allowed.Contains(match[1]) {
			continue
		}
		addFragment(match[0])
		flag(ReasonTelegramLink)
	}

	for _, match := range telegramDeepLinkRe.FindAllString(text, -1) {
		addFragment(match)
		flag(ReasonTelegramDeepLink)
	}

	for _, match := range usernameMentionRe.FindAllStringSubmatch(text, -1) {
		if allowed.Contains(match[1]) {
			continue
		}
		addFragment(match[0])
		flag(ReasonUsernameMention)
	}

	lower := strings.ToLower(text)
	for _, phrase := range spamPhrases {
		if strings.Contains(lower, phrase) {
			addFragment(phrase)
			flag(ReasonSpamPhrase)
		}
	}
	for _, phrase := range cryptoPhrases {
		if strings.Contains(lower, phrase) {
			addFragment(phrase)
			flag(ReasonCryptoSpam)
		}
	}

	return verdict
}
