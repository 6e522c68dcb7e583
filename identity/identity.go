// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package identity maps API keys to the ledger identities requests run as.
//
// The resolved Identity travels with the request in its context.Context;
// nothing about the caller is held in package or connection state.
package identity

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/empverify/core"
)

// Membership service provider IDs with distinct privileges.
const (
	// EmployerMSP members record employment.
	EmployerMSP = "Org1MSP"
	// VerifierMSP members query employment.
	VerifierMSP = "Org2MSP"

	// RoleAdmin elevates a member within its organization.
	RoleAdmin = "admin"
)

// Access levels reported for callers.
const (
	AccessFull     = "FULL_ACCESS"
	AccessAdmin    = "ADMIN_ACCESS"
	AccessEmployer = "ORG1_MEMBER"
	AccessVerifier = "ORG2_MEMBER"
	AccessNone     = "NO_ACCESS"
)

// Identity is a ledger identity.
type Identity struct {
	UserName string `yaml:"user_name" json:"user_name"`
	MSPID    string `yaml:"msp_id" json:"msp_id"`
	Role     string `yaml:"role" json:"role"`
}

// AccessLevel summarizes the identity's privileges.
func (i Identity) AccessLevel() string {
	admin := i.Role == RoleAdmin
	switch {
	case i.MSPID == EmployerMSP && admin:
		return AccessFull
	case i.MSPID == VerifierMSP && admin:
		return AccessAdmin
	case i.MSPID == EmployerMSP:
		return AccessEmployer
	case i.MSPID == VerifierMSP:
		return AccessVerifier
	default:
		return AccessNone
	}
}

// CanWrite reports whether the identity may create or update records.
func (i Identity) CanWrite() bool {
	return i.MSPID == EmployerMSP
}

// CanRead reports whether the identity may read records.
func (i Identity) CanRead() bool {
	return i.MSPID == EmployerMSP || i.MSPID == VerifierMSP
}

// Caller converts the identity to its wire form.
func (i Identity) Caller() *core.Caller {
	return &core.Caller{
		UserID:      i.UserName,
		MSPID:       i.MSPID,
		AccessLevel: i.AccessLevel(),
	}
}

// Entry binds an API key to an identity.
type Entry struct {
	APIKey   string `yaml:"api_key"`
	Identity `yaml:",inline"`
}

// Registry resolves API keys. Keys are held only as BLAKE2b digests.
type Registry struct {
	byDigest map[string]Identity
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRegistry builds a registry from entries.
// Blank or repeated keys are rejected.
func NewRegistry(entries []Entry, opts ...Option) (*Registry, error) {
	r := &Registry{
		byDigest: make(map[string]Identity, len(entries)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	for i, e := range entries {
		key := strings.TrimSpace(e.APIKey)
		if key == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrEmptyAPIKey, i)
		}
		if strings.TrimSpace(e.UserName) == "" || strings.TrimSpace(e.MSPID) == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrIncompleteIdentity, i)
		}
		d := digest(key)
		if _, exists := r.byDigest[d]; exists {
			return nil, fmt.Errorf("%w: entry %d", ErrDuplicateAPIKey, i)
		}
		r.byDigest[d] = e.Identity
	}
	return r, nil
}

// Resolve returns the identity bound to apiKey.
func (r *Registry) Resolve(apiKey string) (Identity, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return Identity{}, ErrEmptyAPIKey
	}
	id, ok := r.byDigest[digest(key)]
	if !ok {
		r.logger.Warn("rejected unknown api key", "key", Mask(key))
		return Identity{}, ErrUnknownAPIKey
	}
	r.logger.Debug("resolved api key", "key", Mask(key), "user", id.UserName, "role", id.Role)
	return id, nil
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	return len(r.byDigest)
}

// Mask hides all but the first four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}

func digest(apiKey string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(apiKey))
	return hex.EncodeToString(h.Sum(nil))
}

type contextKeyCaller struct{}

// WithCaller returns a context carrying id.
func WithCaller(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, id)
}

// FromContext returns the identity carried by ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKeyCaller{}).(Identity)
	return id, ok
}
