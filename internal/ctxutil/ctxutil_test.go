package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Spok95/siakad/internal/access"
)

func TestRole_DefaultsToAnonymous(t *testing.T) {
	assert.Equal(t, access.KindAnonymous, Role(context.Background()).Kind())

	ctx := WithRole(context.Background(), access.Lecturer{User: 4, LecturerID: 2})
	assert.Equal(t, access.KindLecturer, Role(ctx).Kind())
	assert.Equal(t, int64(4), Role(ctx).UserID())
}

func TestRequestIDAndUserID(t *testing.T) {
	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), 42)

	id, ok := RequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)

	uid, ok := UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), uid)

	_, ok = UserID(context.Background())
	assert.False(t, ok)
}

func TestWithDBTimeout_KeepsShorterParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ctx, cancel2 := WithDBTimeout(parent)
	defer cancel2()

	dl, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.LessOrEqual(t, time.Until(dl), time.Second)
}
