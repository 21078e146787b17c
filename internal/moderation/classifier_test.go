package moderation

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	allowed := NewAllowSet("FriendlyChannel", "@mod_team")

	tests := []struct {
		name          string
		text          string
		wantSpam      bool
		wantReason    Reason
		wantFragments []string
	}{
		{
			name:       "empty text",
			text:       "",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:       "whitespace only",
			text:       "   \n\t",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:       "plain chatter",
			text:       "hello, how is everyone doing today?",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:       "allowed channel link",
			text:       "news at t.me/friendlychannel today",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:       "allowed channel link mixed case",
			text:       "news at T.ME/FRIENDLYCHANNEL today",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:       "allowed channel link with at sign",
			text:       "news at t.me/@FriendlyChannel today",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:          "unknown channel link",
			text:          "visit t.me/spamchan now",
			wantSpam:      true,
			wantReason:    ReasonTelegramLink,
			wantFragments: []string{"t.me/spamchan"},
		},
		{
			name:          "long form link",
			text:          "visit telegram.me/spamchan now",
			wantSpam:      true,
			wantReason:    ReasonTelegramLink,
			wantFragments: []string{"telegram.me/spamchan"},
		},
		{
			name:          "deep link never exempted",
			text:          "tg://resolve?domain=friendlychannel",
			wantSpam:      true,
			wantReason:    ReasonTelegramDeepLink,
			wantFragments: []string{"tg://resolve?domain=friendlychannel"},
		},
		{
			name:          "user deep link",
			text:          "ping tg://user?id=12345 for help",
			wantSpam:      true,
			wantReason:    ReasonTelegramDeepLink,
			wantFragments: []string{"tg://user?id=12345"},
		},
		{
			name:          "unknown mention",
			text:          "contact @someguy for deals",
			wantSpam:      true,
			wantReason:    ReasonUsernameMention,
			wantFragments: []string{"@someguy"},
		},
		{
			name:       "allowed mention",
			text:       "ask @mod_team if unsure",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:       "short mention ignored",
			text:       "see @ab for details",
			wantSpam:   false,
			wantReason: ReasonNone,
		},
		{
			name:          "promo phrase case insensitive",
			text:          "JOIN MY CHANNEL for updates",
			wantSpam:      true,
			wantReason:    ReasonSpamPhrase,
			wantFragments: []string{"join my channel"},
		},
		{
			name:          "financial solicitation",
			text:          "Earn money fast, dm for details",
			wantSpam:      true,
			wantReason:    ReasonCryptoSpam,
			wantFragments: []string{"earn money", "dm for details"},
		},
		{
			name:          "reason follows priority order",
			text:          "t.me/spamchan and @someguy, join my channel",
			wantSpam:      true,
			wantReason:    ReasonTelegramLink,
			wantFragments: []string{"t.me/spamchan", "@someguy", "join my channel"},
		},
		{
			name:          "exempted category yields next reason",
			text:          "t.me/friendlychannel and @someguy",
			wantSpam:      true,
			wantReason:    ReasonUsernameMention,
			wantFragments: []string{"@someguy"},
		},
		{
			name:          "repeated fragments deduplicated",
			text:          "t.me/spamchan t.me/spamchan t.me/spamchan",
			wantSpam:      true,
			wantReason:    ReasonTelegramLink,
			wantFragments: []string{"t.me/spamchan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verdict := Classify(tt.text, allowed)
			if verdict.IsSpam != tt.wantSpam {
				t.Fatalf("unexpected spam flag: got %v want %v (%#v)", verdict.IsSpam, tt.wantSpam, verdict)
			}
			if verdict.Reason != tt.wantReason {
				t.Fatalf("unexpected reason: got %q want %q", verdict.Reason, tt.wantReason)
			}
			if len(tt.wantFragments) > 0 && !reflect.DeepEqual(verdict.MatchedFragments, tt.wantFragments) {
				t.Fatalf("unexpected fragments: got %v want %v", verdict.MatchedFragments, tt.wantFragments)
			}
			if !tt.wantSpam && len(verdict.MatchedFragments) != 0 {
				t.Fatalf("clean verdict should carry no fragments, got %v", verdict.MatchedFragments)
			}
		})
	}
}

func TestClassifyNilAllowSet(t *testing.T) {
	t.Parallel()

	verdict := Classify("contact @someguy", nil)
	if !verdict.IsSpam || verdict.Reason != ReasonUsernameMention {
		t.Fatalf("nil allow set should not exempt anything, got %#v", verdict)
	}
}

func TestAllowSetNormalization(t *testing.T) {
	t.Parallel()

	set := NewAllowSet(" @Chan ", "", "other")
	for _, handle := range []string{"chan", "CHAN", "@chan", "@Chan", "other"} {
		if !set.Contains(handle) {
			t.Fatalf("expected %q to be allowed", handle)
		}
	}
	if set.Contains("unknown") {
		t.Fatalf("unexpected allow for unknown handle")
	}
}
