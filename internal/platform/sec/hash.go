// Copyright (c) 2026 BIMS Project. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords using bcrypt with a
// configurable work factor.
//
// # Why configurable?
//
// The cost is the only CPU-bound knob in the authentication flow. Operators
// tune it per deployment (BCRYPT_COST), and tests lower it to keep suites fast.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
//
// A zero value selects [bcrypt.DefaultCost]. A cost below the library
// minimum is raised to it. A cost above the maximum is treated as a
// misconfiguration and falls back to the default, because a single hash
// near bcrypt's ceiling takes hours of CPU.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{cost: cost}
}

// Hash hashes a plain-text password using the bcrypt algorithm.
func (h PasswordHasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), h.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Compare compares a plain-text password with its hashed version.
//
// bcrypt performs the comparison in constant time, which prevents timing attacks.
func (h PasswordHasher) Compare(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
