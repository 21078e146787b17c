package bot

import (
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"
)

func TestContainsID(t *testing.T) {
	t.Parallel()

	admins := []string{"42", "77"}
	if !containsID(admins, "42") {
		t.Fatalf("expected 42 to be found")
	}
	if containsID(admins, "43") {
		t.Fatalf("43 should not be found")
	}
	if containsID(nil, "42") {
		t.Fatalf("empty set contains nothing")
	}
}

func TestGetUN(t *testing.T) {
	t.Parallel()

	for name, tt := range map[string]struct {
		user *api.User
		want string
	}{
		"nil user":        {nil, ""},
		"username":        {&api.User{UserName: "wave", FirstName: "W"}, "wave"},
		"full name":       {&api.User{FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		"first name only": {&api.User{FirstName: "Jane"}, "Jane"},
		"empty":           {&api.User{}, ""},
	} {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := GetUN(tt.user); got != tt.want {
				t.Fatalf("GetUN() = %q, want %q", got, tt.want)
			}
		})
	}
}
