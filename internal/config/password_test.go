package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name       string
		bcryptCost string
		pepper     string
		wantCost   int
		wantErr    bool
	}{
		{name: "default cost", wantCost: 12},
		{name: "valid cost", bcryptCost: "11", wantCost: 11},
		{name: "with pepper", bcryptCost: "10", pepper: "test-pepper", wantCost: 10},
		{name: "cost too low", bcryptCost: "9", wantErr: true},
		{name: "cost too high", bcryptCost: "15", wantErr: true},
		{name: "invalid cost", bcryptCost: "invalid", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.bcryptCost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("Secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	assert.True(t, cfg.VerifyPassword("Secret1", hash))
	assert.False(t, cfg.VerifyPassword("secret1", hash))
	assert.False(t, cfg.VerifyPassword("Secret1", "not-a-hash"))
}

func TestPasswordConfig_PepperIsRequiredToVerify(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("Secret1")
	require.NoError(t, err)
	assert.True(t, peppered.VerifyPassword("Secret1", hash))
	assert.False(t, plain.VerifyPassword("Secret1", hash))
}

func TestPasswordConfig_CheckStrength(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	tests := []struct {
		password string
		want     error
	}{
		{"Secret1", nil},
		{"Abcdé9", nil},
		{"Ab1", ErrPasswordTooShort},
		{"secret1", ErrPasswordNoUpper},
		{"Secretly", ErrPasswordNoDigit},
		{"A1" + strings.Repeat("x", 80), ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := cfg.CheckStrength(tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
