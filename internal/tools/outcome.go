package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Outcome is the settled result of one handler invocation: either a
// success carrying content blocks or a failure carrying an error.
type Outcome struct {
	content []mcp.Content
	err     error
}

// Success builds a successful outcome.
func Success(content ...mcp.Content) Outcome {
	if content == nil {
		content = []mcp.Content{}
	}
	return Outcome{content: content}
}

// Failure builds a failed outcome. A nil error is still a failure.
func Failure(err error) Outcome {
	if err == nil {
		err = errUnspecifiedFailure
	}
	return Outcome{err: err}
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.err != nil
}

// Err returns the failure cause, or nil on success.
func (o Outcome) Err() error {
	return o.err
}

// Content returns the success payload, or nil on failure.
func (o Outcome) Content() []mcp.Content {
	return o.content
}

// Text is a shorthand for a single text content block.
func Text(text string) []mcp.Content {
	return []mcp.Content{mcp.NewTextContent(text)}
}
