package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
)

// JSONHandler implements IOHandler over JSON Lines: every assistant turn is
// one encoded ConversationTurn, and every input line is either a JSON string
// or raw text.
type JSONHandler struct {
	Reader    *bufio.Reader
	Encoder   *json.Encoder
	Sanitizer Sanitizer
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(_ context.Context, turn domain.ConversationTurn) error {
	return h.Encoder.Encode(turn)
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(text) == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return h.Sanitizer.Sanitize(text)
}
