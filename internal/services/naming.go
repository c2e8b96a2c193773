package services

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"infinite-experiment/clanhall/internal/constants"
)

const (
	tagSeedLength  = 6
	defaultTagSeed = "CLAN"
	maxTagProbe    = 999
	maxChannelBase = 80
	maxChannelName = 100
)

var (
	nonTagChars     = regexp.MustCompile(`[^A-Z0-9]`)
	nonChannelChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	dashRun         = regexp.MustCompile(`-+`)
	hexColor        = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)
)

// TagSeed derives the base of a clan tag from its name.
func TagSeed(name string) string {
	cleaned := nonTagChars.ReplaceAllString(strings.ToUpper(name), "")
	if cleaned == "" {
		return defaultTagSeed
	}
	if len(cleaned) > tagSeedLength {
		cleaned = cleaned[:tagSeedLength]
	}
	return cleaned
}

// GenerateTag probes seed, seed1, seed2, ... until taken reports a free tag.
// If every candidate is taken it falls back to a time-derived tag.
func GenerateTag(ctx context.Context, name string, now time.Time, taken func(context.Context, string) (bool, error)) (string, error) {
	seed := TagSeed(name)
	for i := 0; i <= maxTagProbe; i++ {
		suffix := ""
		if i > 0 {
			suffix = strconv.Itoa(i)
		}
		base := seed
		if maxBase := max(1, constants.ClanTagLength-len(suffix)); len(base) > maxBase {
			base = base[:maxBase]
		}
		candidate := base + suffix
		if len(candidate) > constants.ClanTagLength {
			candidate = candidate[:constants.ClanTagLength]
		}

		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return "CL" + millis, nil
}

// FormatClanChannelName builds the clan text channel name, with the bounty
// appended when it is positive.
func FormatClanChannelName(clanName string, bounty int) string {
	base := nonChannelChars.ReplaceAllString(strings.ToLower(clanName), "")
	base = strings.TrimSpace(base)
	base = whitespaceRun.ReplaceAllString(base, "-")
	base = dashRun.ReplaceAllString(base, "-")
	if len(base) > maxChannelBase {
		base = base[:maxChannelBase]
	}

	if bounty <= 0 {
		return base
	}
	name := base + "-💰" + strconv.Itoa(bounty)
	if utf8.RuneCountInString(name) > maxChannelName {
		name = string([]rune(name)[:maxChannelName])
	}
	return name
}

// ParseHexColor accepts "#RRGGBB" or "RRGGBB" and returns "#RRGGBB" uppercased.
func ParseHexColor(input string) (string, bool) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(input), "#")
	if !hexColor.MatchString(cleaned) {
		return "", false
	}
	return "#" + strings.ToUpper(cleaned), true
}
