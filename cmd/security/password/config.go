package password

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation boundaries.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns a baseline suitable for interactive logins.
// Parallelism is CPU-aware but clamped to [1..4] to keep resource usage
// predictable in containers.
func DefaultConfig() Config {
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength: 8,
			MaxLength: 256,
		},
	}
}

// FromEnv loads config from environment variables, applying defaults for
// anything unset or unparseable.
//
// Env surface:
//   - GATE_PASSWORD_MIN_LEN
//   - GATE_PASSWORD_MAX_LEN
//   - GATE_ARGON2_MEMORY_KIB
//   - GATE_ARGON2_ITERATIONS
//   - GATE_ARGON2_PARALLELISM
func FromEnv() Config {
	cfg := DefaultConfig()

	if n, ok := envUint32("GATE_PASSWORD_MIN_LEN"); ok && n >= 8 {
		cfg.Policy.MinLength = int(n)
	}
	if n, ok := envUint32("GATE_PASSWORD_MAX_LEN"); ok && int(n) >= cfg.Policy.MinLength {
		cfg.Policy.MaxLength = int(n)
	}
	if n, ok := envUint32("GATE_ARGON2_MEMORY_KIB"); ok && n >= 8*1024 {
		cfg.Params.MemoryKiB = n
	}
	if n, ok := envUint32("GATE_ARGON2_ITERATIONS"); ok && n >= 1 {
		cfg.Params.Iterations = n
	}
	if n, ok := envUint32("GATE_ARGON2_PARALLELISM"); ok && n >= 1 && n <= 16 {
		cfg.Params.Parallelism = uint8(n) // #nosec G115 -- bounded to [1..16] above.
	}

	return cfg
}

func envUint32(key string) (uint32, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// Validate checks a plaintext password against the policy.
func (c Config) Validate(password string) error {
	if len(password) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if c.Policy.MaxLength > 0 && len(password) > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}
