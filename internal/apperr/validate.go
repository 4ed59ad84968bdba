package apperr

import (
	"strings"

	"github.com/google/uuid"
)

// RequireID checks that id is a well-formed identifier and returns it in
// canonical lowercase hyphenated form. field names the parameter in the
// returned message.
func RequireID(field, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", InvalidArgument("%s is required", field)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", InvalidArgument("%s %q is not a valid id", field, id)
	}
	return parsed.String(), nil
}
