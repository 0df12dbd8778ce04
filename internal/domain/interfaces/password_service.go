package interfaces

// PasswordService abstracts password hashing and verification so the
// services never touch hashing primitives directly.
type PasswordService interface {
	HashPassword(password string) (string, error)
	CheckPasswordHash(password, encodedHash string) (bool, error)
}
