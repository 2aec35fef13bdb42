package core

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// ExtractDomain returns everything after the first "@" of address. ok is
// false when address has no "@".
func ExtractDomain(address string) (domain string, ok bool) {
	_, domain, ok = strings.Cut(address, "@")
	return domain, ok
}

// DomainMismatchError reports an address whose domain part differs from the
// domain that owns it.
type DomainMismatchError struct {
	Address  string
	Domain   string
	Expected string
}

func (e *DomainMismatchError) Error() string {
	return fmt.Sprintf("The domain of %s (%s) is not the same as the domain %s", e.Address, e.Domain, e.Expected)
}

func (e *DomainMismatchError) Unwrap() error {
	return ErrValidation
}

// CheckDomain returns a *DomainMismatchError unless the domain part of
// address equals expected.
func CheckDomain(address, expected string) error {
	domain, _ := ExtractDomain(address)
	if domain != expected {
		return &DomainMismatchError{Address: address, Domain: domain, Expected: expected}
	}
	return nil
}

// NormalizeDomain converts a domain name to its lower-case ASCII form.
func NormalizeDomain(name string) (string, error) {
	ascii, err := idna.Lookup.ToASCII(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if err != nil {
		return "", validationf("invalid domain name %q: %v", name, err)
	}
	if ascii == "" {
		return "", validationf("domain name is required")
	}
	return ascii, nil
}

// NormalizeAddress normalizes the domain part of address and keeps the
// local part as given. Addresses without "@" are returned unchanged.
func NormalizeAddress(address string) (string, error) {
	local, domain, ok := strings.Cut(strings.TrimSpace(address), "@")
	if !ok {
		return address, nil
	}
	d, err := NormalizeDomain(domain)
	if err != nil {
		return "", err
	}
	return local + "@" + d, nil
}
