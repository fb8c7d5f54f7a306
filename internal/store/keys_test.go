package store

import (
	"errors"
	"strings"
	"testing"
)

func TestAddressOfOwnerScoped(t *testing.T) {
	addr, err := AddressOf(KindVideo, "coach@example.com", "vid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.PK != "OWNER#coach@example.com" {
		t.Errorf("pk = %q", addr.PK)
	}
	if addr.SK != "VIDEO#vid-1" {
		t.Errorf("sk = %q", addr.SK)
	}
}

func TestAddressOfSingleton(t *testing.T) {
	// Singleton kinds ignore the id: the owner identity is the instance.
	a1, err := AddressOf(KindUser, "coach@example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := AddressOf(KindUser, "coach@example.com", "something-else")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1 != a2 {
		t.Errorf("singleton addresses differ: %+v vs %+v", a1, a2)
	}
	if a1.SK != "USER#coach@example.com" {
		t.Errorf("sk = %q", a1.SK)
	}
}

func TestAddressOfBusinessKeyed(t *testing.T) {
	addr, err := AddressOf(KindSubscription, "coach@example.com", "sub_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.PK != addr.SK {
		t.Errorf("business-keyed pk should repeat sk: %+v", addr)
	}
	if addr.SK != "SUBSCRIPTION#sub_123" {
		t.Errorf("sk = %q", addr.SK)
	}

	// An empty business key would alias another triple's address, so it is
	// rejected rather than defaulted.
	if _, err := AddressOf(KindBilling, "acct_9", ""); !errors.Is(err, ErrWriteConflict) {
		t.Errorf("expected ErrWriteConflict for empty business key, got %v", err)
	}
}

func TestAddressOfDeterministic(t *testing.T) {
	a, err := AddressOf(KindMember, "coach@example.com", "member@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := AddressOf(KindMember, "coach@example.com", "member@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("same triple produced different addresses: %+v vs %+v", a, b)
	}
}

func TestAddressOfRejectsEmptySegments(t *testing.T) {
	if _, err := AddressOf(KindVideo, "", "vid-1"); err == nil {
		t.Error("expected error for empty owner")
	}
	if _, err := AddressOf(KindVideo, "coach@example.com", ""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestAddressOfUnknownKind(t *testing.T) {
	_, err := AddressOf(Kind("MYSTERY"), "coach@example.com", "x")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKindPrefixesDoNotCollide(t *testing.T) {
	// Injectivity of the key codec depends on no kind prefix being a prefix
	// of another. LIVE#/LINK#/LOCATION#/LANDING# are the tight cases.
	kinds := make([]Kind, 0, len(kindSpecs))
	for k := range kindSpecs {
		kinds = append(kinds, k)
	}
	for _, a := range kinds {
		for _, b := range kinds {
			if a == b {
				continue
			}
			if strings.HasPrefix(PrefixOf(a), PrefixOf(b)) {
				t.Errorf("prefix %q shadows %q", PrefixOf(b), PrefixOf(a))
			}
		}
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		sk   string
		want Kind
	}{
		{"VIDEO#vid-1", KindVideo},
		{"USER#coach@example.com", KindUser},
		{"LANDING#page-1", KindLandingPage},
		{"SUBSCRIPTION#sub_123", KindSubscription},
	}
	for _, tc := range cases {
		got, err := KindOf(tc.sk)
		if err != nil {
			t.Errorf("KindOf(%q): %v", tc.sk, err)
			continue
		}
		if got != tc.want {
			t.Errorf("KindOf(%q) = %s, want %s", tc.sk, got, tc.want)
		}
	}
}

func TestKindOfUnknownPrefix(t *testing.T) {
	_, err := KindOf("WIDGET#w-1")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
