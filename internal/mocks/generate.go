// Package mocks provides gomock-generated mocks for the auth ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces in
// internal/ports. The mocks are generated using go:generate directives and provide a fluent API
// for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockUserStore(ctrl)
//	store.EXPECT().GetByEmail(gomock.Any(), "ann@x.com").Return(user, nil)
//
// Hand-written in-memory fakes live in internal/mocks/auth.
package mocks

// Generate mocks for the auth ports from internal/ports:
// UserStore, PasswordHasher, TokenIssuer, TokenRevoker
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_ports_mock.go github.com/target/authgate/internal/ports UserStore,PasswordHasher,TokenIssuer,TokenRevoker
