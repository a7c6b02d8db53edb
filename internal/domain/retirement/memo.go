package retirement

import (
	"strings"
	"unicode/utf8"

	"github.com/portal/backend/internal/domain/shared"
)

// MaxMemoLength is the longest memo accepted, in characters
const MaxMemoLength = 1000

// Memo is a free-text note shared on the memos board
type Memo struct {
	shared.BaseEntity
	Body string
}

// NewMemo validates and creates a memo
func NewMemo(body string) (*Memo, error) {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > MaxMemoLength {
		return nil, shared.InvalidInput("Memo must be between 1 and 1000 characters")
	}
	return &Memo{BaseEntity: shared.NewBaseEntity(), Body: body}, nil
}
