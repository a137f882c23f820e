package network

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"wrapped deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), KindTimeout},
		{"timeout text", errors.New("net/http: request timeout"), KindTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), KindConnection},
		{"dns failure", errors.New("lookup api.example.com: no such host"), KindConnection},
		{"broken pipe", errors.New("write: broken pipe"), KindConnection},
		{"unrelated", errors.New("invalid character '<'"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(errors.New("connection reset by peer")))
	assert.True(t, Retryable(context.DeadlineExceeded))
	assert.False(t, Retryable(errors.New("syntax error")))
	assert.False(t, Retryable(nil))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "The request timed out.", Message(KindTimeout))
	assert.Equal(t, "Could not reach the remote service.", Message(KindConnection))
	assert.Empty(t, Message(KindUnknown))
}
