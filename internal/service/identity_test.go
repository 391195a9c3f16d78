package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iammohit64/wrap-up/internal/model"
)

func strPtr(s string) *string { return &s }

func TestIdentityService_ResolveDisplayName(t *testing.T) {
	wallet := "0x1234567890abcdef1234567890abcdef12345678"

	tests := []struct {
		name          string
		identity      string
		mockGetWallet func(ctx context.Context, walletAddress string) (*model.User, error)
		want          string
	}{
		{
			name:     "empty identity is anonymous",
			identity: "",
			want:     AnonymousName,
		},
		{
			name:     "session identity is anonymous",
			identity: "anon_f81d4fae",
			want:     AnonymousName,
		},
		{
			name:     "profile with display name",
			identity: wallet,
			mockGetWallet: func(ctx context.Context, walletAddress string) (*model.User, error) {
				return &model.User{WalletAddress: walletAddress, DisplayName: strPtr("alice")}, nil
			},
			want: "alice",
		},
		{
			name:     "profile with empty display name falls back to truncation",
			identity: wallet,
			mockGetWallet: func(ctx context.Context, walletAddress string) (*model.User, error) {
				return &model.User{WalletAddress: walletAddress, DisplayName: strPtr("")}, nil
			},
			want: "0x1234...5678",
		},
		{
			name:     "no profile falls back to truncation",
			identity: wallet,
			mockGetWallet: func(ctx context.Context, walletAddress string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			want: "0x1234...5678",
		},
		{
			name:     "lookup failure degrades to truncation",
			identity: wallet,
			mockGetWallet: func(ctx context.Context, walletAddress string) (*model.User, error) {
				return nil, errors.New("connection refused")
			},
			want: "0x1234...5678",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIdentityService(&mockUserRepository{getByWalletFn: tt.mockGetWallet})

			got := svc.ResolveDisplayName(context.Background(), tt.identity)
			if got != tt.want {
				t.Errorf("ResolveDisplayName(%q) = %q, want %q", tt.identity, got, tt.want)
			}
		})
	}
}

func TestTruncateIdentity(t *testing.T) {
	tests := []struct {
		identity string
		want     string
	}{
		{"0x1234567890abcdef1234567890abcdef12345678", "0x1234...5678"},
		{"short", "short"},
		{"0123456789", "0123456789"}, // exactly at the threshold
		{"0123456789a", "012345...789a"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TruncateIdentity(tt.identity); got != tt.want {
			t.Errorf("TruncateIdentity(%q) = %q, want %q", tt.identity, got, tt.want)
		}
	}
}
