package model

import "fmt"

// User-visible error text. The underlying error only goes to the debug log.
const (
	ErrTextInitialize         = "Failed to initialize chat. Please restart agentchat."
	ErrTextNewChat            = "Failed to create new chat. Please try again."
	ErrTextCreateConversation = "Failed to create conversation. Please try again."
	ErrTextSendMessage        = "Failed to send message. Please try again."
)

// InitializationError records why the startup conversation could not be
// created. Startup is not retried.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}
