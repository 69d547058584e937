package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fasttemplate"
)

// ErrAuthorNotConfigured is returned when user.name or
// user.email is missing from the repository
// configuration.
var ErrAuthorNotConfigured = errors.New("author not configured")

// DefaultIdentityFormat renders an identity the way git
// prints it in patch headers.
const DefaultIdentityFormat = "{{name}} <{{email}}>"

// Identity is a configured committer identity.
type Identity struct {
	Name  string
	Email string
}

// String renders the identity as "name <email>".
func (id Identity) String() string {
	return id.Format(DefaultIdentityFormat)
}

// Format substitutes {{name}} and {{email}} in tpl.
// Unknown placeholders are preserved as-is. An empty tpl
// falls back to DefaultIdentityFormat.
func (id Identity) Format(tpl string) string {
	if tpl == "" {
		tpl = DefaultIdentityFormat
	}

	return fasttemplate.ExecuteStringStd(
		tpl, "{{", "}}",
		map[string]any{
			"name":  id.Name,
			"email": id.Email,
		},
	)
}

// ParseIdentity extracts user.name and user.email from
// "key=value" lines as printed by git config --list.
// Later lines override earlier ones, so a local value
// wins over a global one. Lines without "=" are
// skipped.
func ParseIdentity(configList string) (Identity, error) {
	const errCtx = "parsing identity"

	var id Identity

	for _, line := range strings.Split(configList, "\n") {
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case "user.name":
			id.Name = val
		case "user.email":
			id.Email = val
		default:
			continue
		}
	}

	if id.Name == "" || id.Email == "" {
		return Identity{}, fmt.Errorf(
			"%s: %w", errCtx, ErrAuthorNotConfigured,
		)
	}

	return id, nil
}
