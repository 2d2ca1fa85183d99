package storage_test

import (
	"context"
	"testing"

	"github.com/inkwell-journal/authcore/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestValidateMembers_ReportsUnknownIDs(t *testing.T) {
	pool := setupTestPool(t)
	defer pool.Close()
	ctx := context.Background()

	knownID, err := insertTestUser(ctx, pool, "validate-members-known")
	require.NoError(t, err)

	const unknownID int32 = -1

	q := storage.New(pool)
	unknown, err := q.ValidateMembers(ctx, []int32{knownID, unknownID})
	require.NoError(t, err)
	require.Equal(t, []int32{unknownID}, unknown)
}

// TestReplaceGroupMembers_RejectsWholeListOnUnknownID asserts the
// SPEC_FULL group-membership-update rule: if any id in the replacement
// list isn't a known user, the whole update is rejected and nothing
// is written, not even the members that were already valid.
func TestReplaceGroupMembers_RejectsWholeListOnUnknownID(t *testing.T) {
	pool := setupTestPool(t)
	defer pool.Close()
	ctx := context.Background()

	groupID, err := insertTestGroup(ctx, pool, "replace-members-reject")
	require.NoError(t, err)
	validID, err := insertTestUser(ctx, pool, "replace-members-valid")
	require.NoError(t, err)

	q := storage.New(pool)
	require.NoError(t, q.AddGroupMember(ctx, groupID, validID))

	const unknownID int32 = -1
	err = q.ReplaceGroupMembers(ctx, groupID, []int32{validID, unknownID})
	require.Error(t, err)

	var unknownErr *storage.UnknownMemberError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, []int32{unknownID}, unknownErr.IDs)

	members, err := q.ListGroupMembers(ctx, groupID)
	require.NoError(t, err)
	require.Equal(t, []int32{validID}, members)
}

func TestReplaceGroupMembers_AppliesCleanList(t *testing.T) {
	pool := setupTestPool(t)
	defer pool.Close()
	ctx := context.Background()

	groupID, err := insertTestGroup(ctx, pool, "replace-members-clean")
	require.NoError(t, err)
	oldMember, err := insertTestUser(ctx, pool, "replace-members-old")
	require.NoError(t, err)
	newMember, err := insertTestUser(ctx, pool, "replace-members-new")
	require.NoError(t, err)

	q := storage.New(pool)
	require.NoError(t, q.AddGroupMember(ctx, groupID, oldMember))

	require.NoError(t, q.ReplaceGroupMembers(ctx, groupID, []int32{newMember}))

	members, err := q.ListGroupMembers(ctx, groupID)
	require.NoError(t, err)
	require.Equal(t, []int32{newMember}, members)
}
