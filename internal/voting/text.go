package voting

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/robalyx/votedentry/internal/database/types"
	"golang.org/x/text/unicode/norm"
)

// cleanBody trims and normalizes a body, reporting problems under field.
func (e *Engine) cleanBody(field, body string) (string, error) {
	body = norm.NFC.String(strings.TrimSpace(body))

	switch {
	case body == "":
		return "", types.NewValidationError(field, "This field is required.")
	case utf8.RuneCountInString(body) > e.maxBodyLength:
		return "", types.NewValidationError(field,
			fmt.Sprintf("Ensure this value has at most %d characters.", e.maxBodyLength))
	}

	return body, nil
}
