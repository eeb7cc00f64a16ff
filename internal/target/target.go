// Package target normalizes user supplied addresses before analysis.
package target

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrEmptyAddress is returned when nothing is left to analyze.
var ErrEmptyAddress = errors.New("address cannot be empty")

// Normalize turns what a user typed into the address handed to the
// analyzers: surrounding space is trimmed, the text is lower-cased, a
// http(s) scheme with its path, port and query is stripped, a trailing slash
// is dropped and an internationalized domain name is converted to its ASCII
// form ("bücher.example" becomes "xn--bcher-kva.example").
//
// The address is not validated. Anything non-empty is returned; a malformed
// name simply fails to resolve later.
func Normalize(input string) (string, error) {
	address := strings.ToLower(strings.TrimSpace(input))

	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		if u, err := url.Parse(address); err == nil {
			address = u.Hostname()
		} else {
			address = address[strings.Index(address, "://")+3:]
		}
	}

	if i := strings.IndexAny(address, "/?#"); i >= 0 {
		address = address[:i]
	}
	address = strings.Trim(address, "[]")

	if address == "" {
		return "", ErrEmptyAddress
	}

	if net.ParseIP(address) != nil {
		return address, nil
	}

	if ascii, err := idna.ToASCII(address); err == nil && ascii != "" {
		return ascii, nil
	}
	return address, nil
}

// NormalizeAll normalizes every input, keeping their order and dropping
// duplicates after normalization.
func NormalizeAll(inputs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(inputs))
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		address, err := Normalize(in)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		out = append(out, address)
	}
	return out, nil
}
