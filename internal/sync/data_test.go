package sync

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteCounter_Read(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		bufferSize  int
		expectedN   int
		expectedErr error
	}{
		{
			name:        "successful read",
			input:       "test data",
			bufferSize:  4,
			expectedN:   4,
			expectedErr: nil,
		},
		{
			name:        "empty input",
			input:       "",
			bufferSize:  4,
			expectedN:   0,
			expectedErr: io.EOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &byteCounter{
				ctx:    context.Background(),
				f:      strings.NewReader(tt.input),
				bucket: "test-bucket",
			}

			buffer := make([]byte, tt.bufferSize)
			n, err := counter.Read(buffer)

			assert.Equal(t, tt.expectedN, n)
			assert.Equal(t, tt.expectedErr, err)
			assert.Equal(t, int64(tt.expectedN), counter.n)
		})
	}
}

func TestByteCounter_ReadAll(t *testing.T) {
	counter := &byteCounter{
		ctx:    context.Background(),
		f:      strings.NewReader(strings.Repeat("x", 10000)),
		bucket: "test-bucket",
	}

	b, err := io.ReadAll(counter)
	require.NoError(t, err)
	assert.Len(t, b, 10000)
	assert.Equal(t, int64(10000), counter.n)
}

func TestByteCounter_Seek(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		offset      int64
		whence      int
		expectedPos int64
	}{
		{
			name:        "seek from start",
			input:       "test data",
			offset:      2,
			whence:      io.SeekStart,
			expectedPos: 2,
		},
		{
			name:        "seek from end",
			input:       "test data",
			offset:      0,
			whence:      io.SeekEnd,
			expectedPos: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &byteCounter{
				ctx: context.Background(),
				f:   strings.NewReader(tt.input),
			}

			pos, err := counter.Seek(tt.offset, tt.whence)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedPos, pos)
			assert.Zero(t, counter.n, "seeking is not counted")
		})
	}
}
