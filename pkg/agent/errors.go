package agent

import "fmt"

// CollaboratorError reports a failure of the chat service or its client.
type CollaboratorError struct {
	// Op is the failed step: "open", "chat", "response" or "close".
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("gigachat %s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
