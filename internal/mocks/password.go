package mocks

import "errors"

// ErrPasswordMismatch is returned by MockPasswordVerifier on failure.
var ErrPasswordMismatch = errors.New("password does not match")

// MockPasswordHasher implements auth.PasswordHasher for testing.
type MockPasswordHasher struct {
	HashFn func(password string) (string, error)

	Hashed string
	Err    error
}

// Hash implements the auth.PasswordHasher interface.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Hashed != "" {
		return m.Hashed, nil
	}
	return "hashed:" + password, nil
}

// MockPasswordVerifier implements auth.PasswordVerifier for testing.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error

	ShouldSucceed bool
}

// Compare implements the auth.PasswordVerifier interface.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return ErrPasswordMismatch
}
