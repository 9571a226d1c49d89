package strategy

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/theplant/docwhere"
)

const (
	OpInSubnet        = "inSubnet"
	OpInRange         = "inRange"
	OpIsPrivate       = "isPrivate"
	OpIsPublic        = "isPublic"
	OpIsIPv4          = "isIPv4"
	OpIsIPv6          = "isIPv6"
	OpIsLoopback      = "isLoopback"
	OpIsLinkLocal     = "isLinkLocal"
	OpIsMulticast     = "isMulticast"
	OpIsDocumentation = "isDocumentation"
	OpIsCarrierGrade  = "isCarrierGrade"
)

// Address blocks behind the classification operators.
var (
	PrivateNetworks       = []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7"}
	LoopbackNetworks      = []string{"127.0.0.0/8", "::1/128"}
	LinkLocalNetworks     = []string{"169.254.0.0/16", "fe80::/10"}
	MulticastNetworks     = []string{"224.0.0.0/4", "ff00::/8"}
	DocumentationNetworks = []string{"192.0.2.0/24", "198.51.100.0/24", "203.0.113.0/24", "2001:db8::/32"}
	CarrierGradeNetworks  = []string{"100.64.0.0/10"}
)

// IPRangeInput is the value of inRange.
var IPRangeInput = &ObjectType{
	Name: "IpRangeInput",
	Fields: []ObjectField{
		{Name: "from", Type: scalarOf("IpAddress"), Required: true},
		{Name: "to", Type: scalarOf("IpAddress"), Required: true},
	},
}

// Network handles IpAddress fields through the inet type.
type Network struct {
	cast *CastStrategy
}

func NewNetwork() *Network {
	return &Network{cast: Cast("network", docwhere.IPAddress, "inet")}
}

func (s *Network) Name() string { return "network" }

func (s *Network) CanHandle(op string, ft docwhere.FieldType) bool {
	return ft.Kind() == docwhere.KindIPAddress && hasOperator(s.Operators(ft), op)
}

func (s *Network) Operators(ft docwhere.FieldType) []Operator {
	if ft.Kind() != docwhere.KindIPAddress {
		return nil
	}
	return append(s.cast.Operators(ft),
		Operator{Name: OpInSubnet, Value: scalarOf("String"), Description: "Address is contained in the CIDR network"},
		Operator{Name: OpInRange, Value: objectOf(IPRangeInput), Description: "Address is between from and to, inclusive"},
		Operator{Name: OpIsPrivate, Value: boolean(), Description: "RFC 1918 and unique local addresses"},
		Operator{Name: OpIsPublic, Value: boolean(), Description: "Not in any private or special purpose block"},
		Operator{Name: OpIsIPv4, Value: boolean(), Description: "IPv4 address"},
		Operator{Name: OpIsIPv6, Value: boolean(), Description: "IPv6 address"},
		Operator{Name: OpIsLoopback, Value: boolean(), Description: "Loopback address"},
		Operator{Name: OpIsLinkLocal, Value: boolean(), Description: "Link local address"},
		Operator{Name: OpIsMulticast, Value: boolean(), Description: "Multicast address"},
		Operator{Name: OpIsDocumentation, Value: boolean(), Description: "Documentation address (RFC 5737, RFC 3849)"},
		Operator{Name: OpIsCarrierGrade, Value: boolean(), Description: "Carrier grade NAT address (RFC 6598)"},
	)
}

func (s *Network) Build(path Path, op string, value any, ft docwhere.FieldType) (string, []any, error) {
	inet := operand(path, "inet")
	switch op {
	case OpInSubnet:
		cidr, err := expectString(op, value)
		if err != nil {
			return "", nil, err
		}
		if _, err := netip.ParsePrefix(strings.TrimSpace(cidr)); err != nil {
			return "", nil, &docwhere.InvalidValueShapeError{Operator: op, Expected: "CIDR network", Actual: fmt.Sprintf("%q", cidr)}
		}
		return fmt.Sprintf("%s <<= %s", inet, marker("inet")), []any{cidr}, nil

	case OpInRange:
		m, err := expectObject(op, value)
		if err != nil {
			return "", nil, err
		}
		from, err := rangeBound(op, m, "from")
		if err != nil {
			return "", nil, err
		}
		to, err := rangeBound(op, m, "to")
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("(%s >= %s AND %s <= %s)", inet, marker("inet"), inet, marker("inet")), []any{from, to}, nil

	case OpIsIPv4, OpIsIPv6:
		flag, err := expectBool(op, value)
		if err != nil {
			return "", nil, err
		}
		family := 4
		if op == OpIsIPv6 {
			family = 6
		}
		cmp := "="
		if !flag {
			cmp = "!="
		}
		return fmt.Sprintf("family(%s) %s %d", inet, cmp, family), nil, nil

	case OpIsPrivate, OpIsPublic, OpIsLoopback, OpIsLinkLocal, OpIsMulticast, OpIsDocumentation, OpIsCarrierGrade:
		flag, err := expectBool(op, value)
		if err != nil {
			return "", nil, err
		}
		var networks []string
		negate := !flag
		switch op {
		case OpIsPrivate:
			networks = PrivateNetworks
		case OpIsPublic:
			networks = specialPurposeNetworks()
			negate = flag
		case OpIsLoopback:
			networks = LoopbackNetworks
		case OpIsLinkLocal:
			networks = LinkLocalNetworks
		case OpIsMulticast:
			networks = MulticastNetworks
		case OpIsDocumentation:
			networks = DocumentationNetworks
		case OpIsCarrierGrade:
			networks = CarrierGradeNetworks
		}
		cond := containedInAny(inet, networks)
		if negate {
			return "NOT " + cond, nil, nil
		}
		return cond, nil, nil
	}
	return s.cast.Build(path, op, value, ft)
}

func rangeBound(op string, m map[string]any, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", docwhere.NewInvalidValueShapeError(op, fmt.Sprintf("string %q bound", key), m[key])
	}
	if _, err := netip.ParseAddr(strings.TrimSpace(s)); err != nil {
		return "", &docwhere.InvalidValueShapeError{Operator: op, Expected: "IP address " + key + " bound", Actual: fmt.Sprintf("%q", s)}
	}
	return s, nil
}

func specialPurposeNetworks() []string {
	var all []string
	for _, nets := range [][]string{PrivateNetworks, LoopbackNetworks, LinkLocalNetworks, MulticastNetworks, DocumentationNetworks, CarrierGradeNetworks} {
		all = append(all, nets...)
	}
	return all
}

// containedInAny compares against fixed literals only; user values never
// reach this function.
func containedInAny(inet string, networks []string) string {
	parts := make([]string, len(networks))
	for i, n := range networks {
		parts[i] = fmt.Sprintf("%s <<= '%s'::inet", inet, n)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
