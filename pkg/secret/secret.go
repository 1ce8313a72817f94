// Package secret provides the opaque credential handle used for service users
// and the random source that produces it.
package secret

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

const redacted = "[redacted]"

// DefaultAlphabet is the character set used by Random.
const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!#$%&*()-_=+[]{}<>:?"

// ErrInvalidLength is returned when a secret of non-positive length is requested.
var ErrInvalidLength = errors.New("secret length must be positive")

// Secret is a credential value that never prints in plaintext.
// Use Reveal to obtain the value.
type Secret struct {
	value string
}

// New wraps a plaintext value.
func New(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the plaintext value.
func (s Secret) Reveal() string {
	return s.value
}

// Len returns the length of the plaintext value.
func (s Secret) Len() int {
	return len(s.value)
}

// IsZero reports whether the secret holds no value.
func (s Secret) IsZero() bool {
	return s.value == ""
}

func (s Secret) String() string {
	return redacted
}

// GoString keeps %#v from printing the value.
func (s Secret) GoString() string {
	return redacted
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(redacted)
}

func (s Secret) MarshalYAML() (interface{}, error) {
	return redacted, nil
}

// Source produces secrets of a fixed length.
type Source interface {
	Generate(length int) (Secret, error)
}

// Random draws characters uniformly from Alphabet using crypto/rand.
type Random struct {
	Alphabet string
}

// NewRandom returns a Random source over DefaultAlphabet.
func NewRandom() *Random {
	return &Random{Alphabet: DefaultAlphabet}
}

// Generate returns a random secret of the given length.
func (r *Random) Generate(length int) (Secret, error) {
	if length <= 0 {
		return Secret{}, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	alphabet := r.Alphabet
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return Secret{}, fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return Secret{value: string(out)}, nil
}

// Fixed is a Source that always returns the same value, truncated or padded
// with 'x' to the requested length. Useful for dry runs and tests.
type Fixed string

// Generate returns the fixed value at the requested length.
func (f Fixed) Generate(length int) (Secret, error) {
	if length <= 0 {
		return Secret{}, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	v := string(f)
	for len(v) < length {
		v += "x"
	}
	return Secret{value: v[:length]}, nil
}
