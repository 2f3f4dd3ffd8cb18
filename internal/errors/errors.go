package errors

import "fmt"

var (
	ErrAuthFailure        = fmt.Errorf("authentication failed")
	ErrMalformedMessage   = fmt.Errorf("malformed message")
	ErrUnknownMessageType = fmt.Errorf("unknown message type")
	ErrPersistence        = fmt.Errorf("persistence failure")
	ErrStaleConnection    = fmt.Errorf("connection is no longer registered")
	ErrAlreadyRegistered  = fmt.Errorf("connection already registered")
	ErrNotMember          = fmt.Errorf("connection has not joined room")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrSlowConsumer       = fmt.Errorf("send buffer full")
)
