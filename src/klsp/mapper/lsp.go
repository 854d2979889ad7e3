package mapper

import (
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// RequestToParams decodes the parameters of a jsonrpc2.Request into a new T.
func RequestToParams[T any](req jsonrpc2.Request) (*T, error) {
	var params T
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToExecuteCommandParams decodes protocol.ExecuteCommandParams, keeping each argument as raw JSON bytes
// so that the command's owner decides how to unmarshal it.
func RequestToExecuteCommandParams(req jsonrpc2.Request) (*protocol.ExecuteCommandParams, error) {
	var raw struct {
		Command   string            `json:"command"`
		Arguments []json.RawMessage `json:"arguments,omitempty"`
	}
	if err := json.Unmarshal(req.Params(), &raw); err != nil {
		return nil, wrapErrParse(err)
	}

	params := &protocol.ExecuteCommandParams{
		Command:   raw.Command,
		Arguments: make([]interface{}, 0, len(raw.Arguments)),
	}
	for _, arg := range raw.Arguments {
		params.Arguments = append(params.Arguments, []byte(arg))
	}
	return params, nil
}

// ApplyContentChanges applies incremental or full content changes to text, in order.
// A change without a range replaces the whole text.
func ApplyContentChanges(text string, changes []protocol.TextDocumentContentChangeEvent) (string, error) {
	content := []byte(text)
	for _, change := range changes {
		if change.Range == nil {
			content = []byte(change.Text)
			continue
		}
		start, err := PositionOffset(content, change.Range.Start)
		if err != nil {
			return "", fmt.Errorf("unable to apply changes: %w", err)
		}
		end, err := PositionOffset(content, change.Range.End)
		if err != nil {
			return "", fmt.Errorf("unable to apply changes: %w", err)
		}
		if end < start {
			return "", fmt.Errorf("unable to apply changes: range end %v precedes start %v", change.Range.End, change.Range.Start)
		}

		updated := make([]byte, 0, len(content)-(end-start)+len(change.Text))
		updated = append(updated, content[:start]...)
		updated = append(updated, change.Text...)
		content = append(updated, content[end:]...)
	}
	return string(content), nil
}

// PositionsToRange converts two positions into a range.
func PositionsToRange(start, end protocol.Position) protocol.Range {
	return protocol.Range{Start: start, End: end}
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}
