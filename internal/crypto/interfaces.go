package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/password_hasher_mock.go -package=mock

// PasswordHasher derives and checks stored password hashes for the server's
// user accounts. Hashes are self-describing so tuning parameters can change
// without invalidating existing accounts.
type PasswordHasher interface {
	// Hash returns an encoded Argon2id hash of password with a fresh salt.
	Hash(password string) (string, error)

	// Verify reports whether password matches encodedHash. A malformed hash
	// is an error, a mismatch is (false, nil).
	Verify(password, encodedHash string) (bool, error)
}
