package ownership

import "sort"

// Allowlist names the tags that get their own color (players) and the
// tags that borrow an overlord's color (puppets).
type Allowlist struct {
	Players map[string]bool
	Puppets map[string]string
}

// NewAllowlist builds an allowlist from plain config values
func NewAllowlist(players []string, puppets map[string]string) Allowlist {
	a := Allowlist{
		Players: make(map[string]bool, len(players)),
		Puppets: make(map[string]string, len(puppets)),
	}
	for _, p := range players {
		a.Players[p] = true
	}
	for puppet, overlord := range puppets {
		a.Puppets[puppet] = overlord
	}
	return a
}

// DefaultPlayers are the player tags of the Kaiserredux multiplayer map
// this tool was first written for.
var DefaultPlayers = []string{
	"FKE", "SPE", "OMN", "LKR", "HBC", "FEC",
	"ENC", "SWL", "ENH", "TAB", "M27", "HAV",
}

// DefaultPuppets maps puppet tags to their overlords
var DefaultPuppets = map[string]string{
	"VN9": "FKE",
	"SRC": "GNG",
	"STA": "GNG",
	"TAB": "GNG",
	"TGL": "GNG",
	"NMD": "IMP",
	"ZAC": "IMP",
	"WEK": "IMP",
	"VAE": "IMP",
	"VIR": "IMP",
	"BRY": "IMP",
	"VN1": "SPE",
	"VN2": "SPE",
	"VN3": "SPE",
	"VN4": "SPE",
	"VN5": "SPE",
	"VN6": "SPE",
	"VN7": "SPE",
}

// DefaultAllowlist returns a fresh copy of the built-in tables
func DefaultAllowlist() Allowlist {
	return NewAllowlist(DefaultPlayers, DefaultPuppets)
}

// ColorKey returns the tag whose color entry should be used for tag: the
// tag itself for a player, the overlord for a puppet of a player.
func (a Allowlist) ColorKey(tag string) (string, bool) {
	if a.Players[tag] {
		return tag, true
	}
	if overlord, ok := a.Puppets[tag]; ok && a.Players[overlord] {
		return overlord, true
	}
	return "", false
}

// PlayerTags lists the players in sorted order
func (a Allowlist) PlayerTags() []string {
	tags := make([]string, 0, len(a.Players))
	for t := range a.Players {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
