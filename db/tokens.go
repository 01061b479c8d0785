/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

// DefaultProfile is used when a service does not name a token profile
const DefaultProfile = "default"

var profilePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

// GraphToken is a stored access token
type GraphToken struct {
	Profile     string     `json:"profile"`
	AccessToken string     `json:"access_token"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsExpired reports whether the token has an expiry in the past
func (t *GraphToken) IsExpired() bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(time.Now())
}

// TokenMetadata describes a stored token without exposing it
type TokenMetadata struct {
	Profile   string
	Prefix    string
	ExpiresAt *time.Time
	UpdatedAt time.Time
	Expired   bool
}

// ValidateProfile checks a profile name
func ValidateProfile(profile string) error {
	if !profilePattern.MatchString(profile) {
		return NewValidationError("profile", profile, "must be 1-64 characters of letters, digits, '_', '.' or '-'")
	}
	return nil
}

// StoreToken saves or replaces the token for profile. A zero expiresAt means no expiry is known.
func (d *DB) StoreToken(profile, accessToken string, expiresAt time.Time) error {
	if err := d.checkClosed(); err != nil {
		return err
	}
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	if accessToken == "" {
		return NewValidationError("access_token", "", "access token cannot be empty")
	}

	now := time.Now()
	token := &GraphToken{
		Profile:     profile,
		AccessToken: accessToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !expiresAt.IsZero() {
		token.ExpiresAt = &expiresAt
	}

	err := d.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketTokens))
		if bucket == nil {
			return NewDatabaseError("store_token", fmt.Errorf("tokens bucket not found"))
		}

		if existing := bucket.Get([]byte(profile)); existing != nil {
			var previous GraphToken
			if err := json.Unmarshal(existing, &previous); err == nil {
				token.CreatedAt = previous.CreatedAt
			}
		}

		data, err := json.Marshal(token)
		if err != nil {
			return NewDatabaseErrorWithProfile("store_token", fmt.Errorf("failed to marshal token: %w", err), profile)
		}
		if err := bucket.Put([]byte(profile), data); err != nil {
			return NewDatabaseErrorWithProfile("store_token", fmt.Errorf("failed to store token: %w", err), profile)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.Infof("Stored Graph token for profile %s", profile)
	return nil
}

// GetToken returns the token stored for profile
func (d *DB) GetToken(profile string) (*GraphToken, error) {
	if err := d.checkClosed(); err != nil {
		return nil, err
	}
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	var token GraphToken
	err := d.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketTokens)).Get([]byte(profile))
		if data == nil {
			return ErrTokenNotFound
		}
		if err := json.Unmarshal(data, &token); err != nil {
			return NewDatabaseErrorWithProfile("get_token", fmt.Errorf("%w: %v", ErrCorruptedData, err), profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// DeleteToken removes the token for profile
func (d *DB) DeleteToken(profile string) error {
	if err := d.checkClosed(); err != nil {
		return err
	}
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	err := d.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketTokens))
		if bucket.Get([]byte(profile)) == nil {
			return ErrTokenNotFound
		}
		return bucket.Delete([]byte(profile))
	})
	if err != nil {
		return err
	}

	d.logger.Infof("Deleted Graph token for profile %s", profile)
	return nil
}

// ListTokens returns metadata for every stored token, sorted by profile
func (d *DB) ListTokens() ([]TokenMetadata, error) {
	if err := d.checkClosed(); err != nil {
		return nil, err
	}

	var list []TokenMetadata
	err := d.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketTokens)).ForEach(func(k, v []byte) error {
			var token GraphToken
			if err := json.Unmarshal(v, &token); err != nil {
				d.logger.Warningf("Skipping unreadable token entry %s: %v", string(k), err)
				return nil
			}
			list = append(list, TokenMetadata{
				Profile:   token.Profile,
				Prefix:    tokenPrefix(token.AccessToken),
				ExpiresAt: token.ExpiresAt,
				UpdatedAt: token.UpdatedAt,
				Expired:   token.IsExpired(),
			})
			return nil
		})
	})
	if err != nil {
		return nil, NewDatabaseError("list_tokens", err)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Profile < list[j].Profile })
	return list, nil
}

// Source returns a token source bound to profile
func (d *DB) Source(profile string) *TokenSource {
	if profile == "" {
		profile = DefaultProfile
	}
	return &TokenSource{db: d, profile: profile}
}

// TokenSource hands out the current access token for one profile
type TokenSource struct {
	db      *DB
	profile string
}

// Token returns the stored access token, failing if it is missing or expired
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, err := s.db.GetToken(s.profile)
	if err != nil {
		return "", fmt.Errorf("no graph token for profile %s: %w", s.profile, err)
	}
	if token.IsExpired() {
		return "", fmt.Errorf("graph token for profile %s expired at %s: %w",
			s.profile, token.ExpiresAt.Format(time.RFC3339), ErrTokenExpired)
	}
	return token.AccessToken, nil
}

// Profile returns the profile this source reads
func (s *TokenSource) Profile() string {
	return s.profile
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "..."
}
