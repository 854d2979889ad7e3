package errors

import (
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUIDNotFound(t *testing.T) {
	id := uuid.Must(uuid.FromString("4d8c6b36-4e9b-4469-8a05-2c60b9671590"))
	err := &UUIDNotFoundError{UUID: id}
	assert.Equal(t, `UUID "4d8c6b36-4e9b-4469-8a05-2c60b9671590" not found`, err.Error())
}

func TestIsSessionMissing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "uuid not found",
			err:  &UUIDNotFoundError{UUID: uuid.Must(uuid.NewV4())},
			want: true,
		},
		{
			name: "wrapped missing session",
			err:  fmt.Errorf("handling hover: %w", &NoSessionFoundError{}),
			want: true,
		},
		{
			name: "unrelated",
			err:  &DocumentSizeLimitError{Size: 10},
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSessionMissing(tt.err))
		})
	}
}
