package application

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidPasswordHash         = errors.New("invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("incompatible password hash version")
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

func CreatePasswordHash(password string, params Argon2idParams) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Format is $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

type parsedHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func parsePasswordHash(hashedPassword string) (parsedHash, error) {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return parsedHash{}, ErrInvalidPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return parsedHash{}, fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
	}
	if version != argon2.Version {
		return parsedHash{}, ErrIncompatiblePasswordVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return parsedHash{}, fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return parsedHash{}, fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
	}
	params.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return parsedHash{}, fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
	}
	params.KeyLength = uint32(len(key))

	return parsedHash{params: params, salt: salt, key: key}, nil
}

// VerifyPassword returns nil when password matches hashedPassword and
// ErrUnauthorized when it does not.
func VerifyPassword(hashedPassword, password string) error {
	parsed, err := parsePasswordHash(hashedPassword)
	if err != nil {
		return err
	}

	p := parsed.params
	comparisonHash := argon2.IDKey([]byte(password), parsed.salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	if subtle.ConstantTimeCompare(parsed.key, comparisonHash) == 1 {
		return nil
	}

	return ErrUnauthorized
}

// OwnerGuard protects mutating operations with the owner passphrase. A guard
// built from an empty hash lets everything through.
type OwnerGuard struct {
	hash   string
	logger *slog.Logger
}

// NewOwnerGuard validates hash and returns a guard for it.
func NewOwnerGuard(hash string, logger *slog.Logger) (*OwnerGuard, error) {
	hash = strings.TrimSpace(hash)
	if hash != "" {
		if _, err := parsePasswordHash(hash); err != nil {
			return nil, err
		}
	}
	return &OwnerGuard{hash: hash, logger: defaultLogger(logger)}, nil
}

// Enabled reports whether a passphrase is required.
func (g *OwnerGuard) Enabled() bool {
	return g != nil && g.hash != ""
}

// Authorize checks the presented passphrase.
func (g *OwnerGuard) Authorize(ctx context.Context, password string, presented bool) error {
	if !g.Enabled() {
		return nil
	}
	logger := serviceLogger(ctx, g.logger, "OwnerGuard", "Authorize")
	if !presented {
		logger.WarnContext(ctx, "owner credentials missing", "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}
	if err := VerifyPassword(g.hash, password); err != nil {
		logger.WarnContext(ctx, "owner credentials rejected", "error_kind", ErrorKind(err))
		return ErrUnauthorized
	}
	return nil
}
