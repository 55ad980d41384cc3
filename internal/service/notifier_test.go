package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kalyxon/progress-server/internal/model"
	"github.com/kalyxon/progress-server/internal/testutil"
)

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(testutil.MakeNoopLogger())
	assert.NoError(t, n.SendPasswordReset(context.Background(), model.User{ID: "u1", Email: "a@b.co"}, "tok"))
}
