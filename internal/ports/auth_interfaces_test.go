package ports_test

import (
	"testing"

	"github.com/target/authgate/internal/mocks"
	fakes "github.com/target/authgate/internal/mocks/auth"
	"github.com/target/authgate/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.UserStore = (*fakes.MemoryUserStore)(nil)
	var _ ports.PasswordHasher = (*fakes.PlainHasher)(nil)
	var _ ports.TokenIssuer = (*fakes.StaticTokenIssuer)(nil)
	var _ ports.TokenRevoker = (*fakes.MemoryRevoker)(nil)

	var _ ports.UserStore = (*mocks.MockUserStore)(nil)
	var _ ports.PasswordHasher = (*mocks.MockPasswordHasher)(nil)
	var _ ports.TokenIssuer = (*mocks.MockTokenIssuer)(nil)
	var _ ports.TokenRevoker = (*mocks.MockTokenRevoker)(nil)
}
