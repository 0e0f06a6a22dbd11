package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrHashingFailed = errors.New("password hashing failed")

// PasswordHasher provides interface for password operations
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// Params are the argon2id cost parameters embedded in every digest.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams matches the interactive login workload.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

type argon2Hasher struct {
	params Params
}

// NewArgon2Hasher creates a password hasher using argon2id.
func NewArgon2Hasher(params Params) PasswordHasher {
	if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 ||
		params.SaltLength == 0 || params.KeyLength == 0 {
		params = DefaultParams()
	}
	return &argon2Hasher{params: params}
}

// Hash produces a self-describing digest of the form
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<b64 salt>$<b64 key>.
// The salt is drawn fresh for every call, so two hashes of the same
// password never match byte for byte.
func (h *argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key under the parameters embedded in digest and
// compares in constant time. Malformed digests verify as false, never as an
// error, so a corrupted credential row behaves like a wrong password.
func (h *argon2Hasher) Verify(password, digest string) bool {
	salt, key, params, err := decodeDigest(digest)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt,
		params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeDigest(digest string) ([]byte, []byte, Params, error) {
	var params Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, params, errors.New("malformed digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, err
	}
	if version != argon2.Version {
		return nil, nil, params, errors.New("unsupported argon2 version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return nil, nil, params, err
	}
	if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return nil, nil, params, errors.New("invalid argon2 parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, err
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, params, errors.New("malformed digest key")
	}

	return salt, key, params, nil
}
