package steam

import (
	"fmt"
	"regexp"
	"strings"
)

// RefKind says how a profile reference identifies the user.
type RefKind string

const (
	// KindID64 is a numeric 64-bit Steam ID.
	KindID64 RefKind = "id64"
	// KindVanity is a custom profile name that must be resolved first.
	KindVanity RefKind = "vanity"
)

// ProfileRef is a parsed profile reference.
type ProfileRef struct {
	Kind  RefKind
	Value string
}

var (
	profilesPath = regexp.MustCompile(`steamcommunity\.com/profiles/(\d+)`)
	vanityPath   = regexp.MustCompile(`steamcommunity\.com/id/([^/?#]+)`)
	rawID64      = regexp.MustCompile(`^\d{17}$`)
)

// ParseProfile accepts a profile URL, a 17 digit Steam ID or a bare vanity name.
func ParseProfile(input string) (ProfileRef, error) {
	s := strings.TrimRight(strings.TrimSpace(input), "/")

	if m := profilesPath.FindStringSubmatch(s); m != nil {
		return ProfileRef{Kind: KindID64, Value: m[1]}, nil
	}
	if m := vanityPath.FindStringSubmatch(s); m != nil {
		return ProfileRef{Kind: KindVanity, Value: m[1]}, nil
	}
	if rawID64.MatchString(s) {
		return ProfileRef{Kind: KindID64, Value: s}, nil
	}
	if s != "" && !strings.HasPrefix(s, "http") && !strings.ContainsAny(s, "/?# ") {
		return ProfileRef{Kind: KindVanity, Value: s}, nil
	}
	return ProfileRef{}, fmt.Errorf("%w: %q", ErrInvalidProfile, input)
}
