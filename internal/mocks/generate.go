// Package mocks provides mock implementations for testing the client.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockCredentialStore(ctrl)
//	store.EXPECT().Load(gomock.Any()).Return(creds, nil)
package mocks

// Generate mock for CredentialStore interface from internal/ports.
// This creates MockCredentialStore with methods: Load, Save, Delete.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/target/mmk-ui-client/internal/ports CredentialStore

// Generate mock for Cache interface from internal/ports.
// This creates MockCache with methods: Set, Get, Delete, DeletePrefix.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_mock.go github.com/target/mmk-ui-client/internal/ports Cache
