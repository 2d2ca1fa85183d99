package permission_test

import (
	"testing"

	"github.com/inkwell-journal/authcore/internal/security/permission"
	"github.com/inkwell-journal/authcore/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestDictionary_EntriesForbidsResource(t *testing.T) {
	data, ok := permission.Lookup("entries")
	assert.True(t, ok)
	assert.False(t, data.AllowResource)
	assert.ElementsMatch(t, []storage.Ability{storage.AbilityRead, storage.AbilityReadWrite}, data.Abilities)
}

func TestDictionary_UsersAllowsResource(t *testing.T) {
	data, ok := permission.Lookup("users")
	assert.True(t, ok)
	assert.True(t, data.AllowResource)
}

func TestDictionary_UsersEntriesReadOnly(t *testing.T) {
	data, ok := permission.Lookup("users/entries")
	assert.True(t, ok)
	assert.ElementsMatch(t, []storage.Ability{storage.AbilityRead}, data.Abilities)
}

func TestDictionary_UnknownRoll(t *testing.T) {
	_, ok := permission.Lookup("not/a/roll")
	assert.False(t, ok)
}

func TestHasPermission_EmptyAbilitiesAlwaysFalse(t *testing.T) {
	ok, err := permission.HasPermission(nil, nil, 1, "entries", nil, nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate_UnknownRollShortCircuitsBeforeDB(t *testing.T) {
	err := permission.Validate(nil, nil, []permission.Tuple{
		{SubjectTable: storage.SubjectUsers, SubjectID: 1, Roll: "no/such/roll", Ability: storage.AbilityRead},
	})

	var verr *permission.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Failures, 1)
	assert.Equal(t, permission.ReasonUnknownRoll, verr.Failures[0].Reason)
	assert.Equal(t, 0, verr.Failures[0].Index)
}

func TestValidate_InvalidAbilityShortCircuitsBeforeDB(t *testing.T) {
	err := permission.Validate(nil, nil, []permission.Tuple{
		{SubjectTable: storage.SubjectUsers, SubjectID: 1, Roll: "users/entries", Ability: storage.AbilityReadWrite},
	})

	var verr *permission.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, permission.ReasonInvalidAbility, verr.Failures[0].Reason)
}

func TestValidate_ResourceNotAllowedShortCircuitsBeforeDB(t *testing.T) {
	usersTable := storage.SubjectUsers
	id := int32(5)
	err := permission.Validate(nil, nil, []permission.Tuple{
		{
			SubjectTable:  storage.SubjectUsers,
			SubjectID:     1,
			Roll:          "entries",
			Ability:       storage.AbilityRead,
			ResourceTable: &usersTable,
			ResourceID:    &id,
		},
	})

	var verr *permission.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, permission.ReasonResourceNotAllowed, verr.Failures[0].Reason)
}

func TestValidate_CleanBatchReturnsNil(t *testing.T) {
	err := permission.Validate(nil, nil, []permission.Tuple{
		{SubjectTable: storage.SubjectUsers, SubjectID: 1, Roll: "entries", Ability: storage.AbilityRead},
		{SubjectTable: storage.SubjectUsers, SubjectID: 1, Roll: "global/tags", Ability: storage.AbilityReadWrite},
	})
	assert.NoError(t, err)
}
