package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches the cost the service registered accounts with
// historically; config may raise it.
const DefaultBcryptCost = 10

// HashPassword hashes a plaintext password with the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value. bcrypt does
// the salted, constant-time comparison; hashes are never compared directly.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
