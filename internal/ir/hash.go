package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainState  = "statecore/state/v1"
	DomainAction = "statecore/action/v1"
	DomainSpec   = "statecore/spec/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash computes the content hash of a state tree.
// Two structurally equal states hash identically regardless of map order.
func StateHash(state any) (string, error) {
	canonical, err := MarshalCanonical(state)
	if err != nil {
		return "", fmt.Errorf("state hash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// ActionHash computes the content hash of a plain action.
func ActionHash(a PlainAction) (string, error) {
	obj := IRObject{"type": IRString(a.Type)}
	if a.Payload != nil {
		obj["payload"] = a.Payload
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("action hash: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// SpecHash computes the content hash of a canonical spec description.
// The compiler uses it to tag journal runs with the reducer set they ran under.
func SpecHash(spec IRValue) (string, error) {
	canonical, err := MarshalCanonical(spec)
	if err != nil {
		return "", fmt.Errorf("spec hash: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// MustStateHash is like StateHash but panics on error. For tests.
func MustStateHash(state any) string {
	h, err := StateHash(state)
	if err != nil {
		panic(err)
	}
	return h
}
