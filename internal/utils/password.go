package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor used when callers pass a
// non-positive cost.  Accounts are provisioned by campus administration, so
// hashing is rare and a high factor is affordable.
const DefaultBcryptCost = 12

// HashPassword hashes plain with bcrypt.  A cost of 0 or less selects
// DefaultBcryptCost; costs above bcrypt.MaxCost are clamped down.  Tests pass
// bcrypt.MinCost to keep hashing fast.
func HashPassword(plain string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.  The
// comparison is constant-time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
