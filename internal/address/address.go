// Package address models parsed mail addresses, including plus addressing
// (user+tag@domain).
package address

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/daisuke6106/dgmail/internal/mimeutil"
)

// Address is a single parsed mail address with an optional display name.
type Address struct {
	// Raw is the bare addr-spec, e.g. "user+tag@example.org".
	Raw string
	// Name is the display name, empty when the header carried none.
	Name string
}

// Parse parses a single address. The input may carry a display name
// ("Name <user@host>") or be a bare addr-spec.
func Parse(s string) (Address, error) {
	a, err := parser().Parse(s)
	if err != nil {
		return Address{}, fmt.Errorf("address: parse %q: %w", s, err)
	}
	return Address{Raw: a.Address, Name: a.Name}, nil
}

// ParseList extracts every address from a From/To style header value,
// decoding RFC 2047 encoded display names. An empty header yields no
// addresses and no error.
func ParseList(header string) ([]Address, error) {
	if strings.TrimSpace(header) == "" {
		return nil, nil
	}
	list, err := parser().ParseList(header)
	if err != nil {
		return nil, fmt.Errorf("address: parse list %q: %w", header, err)
	}
	out := make([]Address, 0, len(list))
	for _, a := range list {
		if a.Address == "" {
			continue
		}
		out = append(out, Address{Raw: a.Address, Name: a.Name})
	}
	return out, nil
}

func parser() *mail.AddressParser {
	return &mail.AddressParser{WordDecoder: mimeutil.NewWordDecoder()}
}

// HasName reports whether the address carried a display name.
func (a Address) HasName() bool {
	return a.Name != ""
}

// User returns the part before the first "@".
func (a Address) User() string {
	user, _, _ := strings.Cut(a.Raw, "@")
	return user
}

// Domain returns the part after the first "@".
func (a Address) Domain() string {
	_, domain, _ := strings.Cut(a.Raw, "@")
	return domain
}

// IsPlus reports whether the user part carries a plus tag.
func (a Address) IsPlus() bool {
	return strings.Contains(a.User(), "+")
}

// PlusBase returns the user part up to the first "+". For a non-plus
// address this equals User.
func (a Address) PlusBase() string {
	base, _, _ := strings.Cut(a.User(), "+")
	return base
}

// PlusTag returns the user part after the first "+", or "" for a non-plus
// address.
func (a Address) PlusTag() string {
	_, tag, _ := strings.Cut(a.User(), "+")
	return tag
}

// String renders the address in RFC 5322 form.
func (a Address) String() string {
	if !a.HasName() {
		return a.Raw
	}
	return (&mail.Address{Name: a.Name, Address: a.Raw}).String()
}
