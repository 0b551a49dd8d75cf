package schema

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewMessageID generates a new message ID in format MSG-{nanoid(10)}.
func NewMessageID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("MSG-%s", id), nil
}

// NewActivityID generates a new activity ID in format ACT-{nanoid(10)}.
func NewActivityID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ACT-%s", id), nil
}
