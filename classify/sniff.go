package classify

import (
	"net/netip"
	"regexp"
	"strings"
	"time"
)

// LooksLikeIPAddress reports whether s is an IP address or CIDR network.
// Strict parsing is tried first; the dotted-quad and colon-group fallbacks
// only run when it fails.
func LooksLikeIPAddress(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	host, _, _ := strings.Cut(s, "/")
	return looksLikeDottedQuad(host) || looksLikeColonGroups(host)
}

func looksLikeDottedQuad(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if len(p) == 0 || len(p) > 3 || !allDigits(p) {
			return false
		}
	}
	return true
}

// looksLikeColonGroups accepts IPv6-like text. Six groups of two hex digits
// is the MAC address shape and is never accepted here.
func looksLikeColonGroups(s string) bool {
	if !strings.Contains(s, ":") {
		return false
	}
	groups := strings.Split(s, ":")
	if len(groups) == 6 && isMACGroups(groups) {
		return false
	}
	compressed := strings.Contains(s, "::")
	if !compressed && len(groups) != 8 {
		return false
	}
	if len(groups) > 8 {
		return false
	}
	for _, g := range groups {
		if len(g) > 4 || !allHex(g) {
			return false
		}
	}
	return true
}

func isMACGroups(groups []string) bool {
	for _, g := range groups {
		if len(g) != 2 || !allHex(g) {
			return false
		}
	}
	return true
}

var macSeparators = strings.NewReplacer(":", "", "-", "", " ", "")

// LooksLikeMACAddress reports whether s is 12 hexadecimal characters once
// ':', '-' and spaces are removed.
func LooksLikeMACAddress(s string) bool {
	stripped := macSeparators.Replace(s)
	return len(stripped) == 12 && allHex(stripped)
}

var hierarchicalPathPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)+$`)

// commonTLDs excludes domain names from path detection.
var commonTLDs = map[string]bool{
	"com": true, "org": true, "net": true, "edu": true, "gov": true, "mil": true,
	"int": true, "io": true, "co": true, "ai": true, "app": true, "dev": true,
	"info": true, "biz": true, "me": true, "tv": true, "us": true, "uk": true,
	"de": true, "fr": true, "jp": true, "cn": true, "ru": true, "br": true,
	"in": true, "au": true, "ca": true, "nl": true, "eu": true, "ch": true,
	"se": true, "no": true, "es": true, "it": true, "pl": true, "local": true,
	"internal": true, "xyz": true, "online": true, "site": true, "tech": true,
}

// LooksLikeHierarchicalPath reports whether s is a dotted label path such
// as "departments.engineering.backend" that is neither a domain name nor
// an IP address.
func LooksLikeHierarchicalPath(s string) bool {
	if !hierarchicalPathPattern.MatchString(s) {
		return false
	}
	last := s[strings.LastIndexByte(s, '.')+1:]
	if commonTLDs[strings.ToLower(last)] {
		return false
	}
	return !LooksLikeIPAddress(s)
}

var dateRangePattern = regexp.MustCompile(`^[\[(]\s*(\d{4}-\d{2}-\d{2})\s*,\s*(\d{4}-\d{2}-\d{2})\s*[\])]$`)

// LooksLikeDateRange reports whether s is a bracket or paren delimited
// pair of ISO dates, e.g. "[2024-01-01,2024-12-31)".
func LooksLikeDateRange(s string) bool {
	m := dateRangePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return false
	}
	for _, d := range m[1:] {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
