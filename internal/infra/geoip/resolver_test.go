package geoip

import (
	"errors"
	"testing"
)

type fixedResolver string

func (f fixedResolver) CountryCode(string) (string, error) { return string(f), nil }

func TestNewResolverEmptyPath(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil || r != nil {
		t.Fatalf("NewResolver(empty) = %v, %v", r, err)
	}
	if _, err := r.CountryCode("203.0.113.1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil resolver err = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
}

func TestNewResolverMissingDatabase(t *testing.T) {
	if _, err := NewResolver(t.TempDir() + "/missing.mmdb"); err == nil {
		t.Fatalf("expected error for missing database")
	}
}

func TestLookup(t *testing.T) {
	if Lookup(nil) != nil {
		t.Fatalf("Lookup(nil) should be nil")
	}
	var r *Resolver
	if Lookup(r) != nil {
		t.Fatalf("Lookup(typed nil) should be nil")
	}
	fn := Lookup(fixedResolver("PS"))
	if code, err := fn("203.0.113.1"); err != nil || code != "PS" {
		t.Fatalf("lookup = %q, %v", code, err)
	}
}
