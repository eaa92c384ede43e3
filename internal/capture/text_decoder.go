package capture

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// TextDecoder treats the frame bytes as an already-decoded payload, which is
// what keyboard-wedge scanners deliver.
type TextDecoder struct{}

func (TextDecoder) Decode(ctx context.Context, f types.Frame) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if !utf8.Valid(f.Data) {
		return "", false, nil
	}
	text := strings.TrimSpace(string(f.Data))
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}
