// Package permission is the subject/ability/resource authorization
// engine: an immutable roll dictionary, per-tuple validation for
// permission-set updates, and the core HasPermission predicate backed
// by storage.
package permission

import (
	"context"
	"fmt"

	"github.com/inkwell-journal/authcore/internal/storage"
)

// Roll names a capability domain. Not to be confused with "role".
type Roll string

const (
	RollEntries             Roll = "entries"
	RollUsers               Roll = "users"
	RollUsersEntries        Roll = "users/entries"
	RollUsersEntriesComment Roll = "users/entries/comments"
	RollGroups              Roll = "groups"
	RollGlobalTags          Roll = "global/tags"
	RollGlobalCustomFields  Roll = "global/custom_fields"
)

// Data describes one roll's legal abilities and whether a grant of
// this roll may be scoped to a specific resource.
type Data struct {
	Abilities     []storage.Ability
	AllowResource bool
}

func (d Data) allows(a storage.Ability) bool {
	for _, allowed := range d.Abilities {
		if a == allowed {
			return true
		}
	}
	return false
}

// Dictionary is the process-wide, immutable set of valid rolls built
// once at startup.
var Dictionary = map[Roll]Data{
	RollEntries: {
		Abilities:     []storage.Ability{storage.AbilityRead, storage.AbilityReadWrite},
		AllowResource: false,
	},
	RollUsers: {
		Abilities:     []storage.Ability{storage.AbilityRead, storage.AbilityReadWrite},
		AllowResource: true,
	},
	RollUsersEntries: {
		Abilities:     []storage.Ability{storage.AbilityRead},
		AllowResource: false,
	},
	RollUsersEntriesComment: {
		Abilities:     []storage.Ability{storage.AbilityRead, storage.AbilityReadWrite},
		AllowResource: false,
	},
	RollGroups: {
		Abilities:     []storage.Ability{storage.AbilityRead, storage.AbilityReadWrite},
		AllowResource: true,
	},
	RollGlobalTags: {
		Abilities:     []storage.Ability{storage.AbilityRead, storage.AbilityReadWrite},
		AllowResource: false,
	},
	RollGlobalCustomFields: {
		Abilities:     []storage.Ability{storage.AbilityRead, storage.AbilityReadWrite},
		AllowResource: false,
	},
}

// Lookup returns the roll's dictionary entry and whether it exists.
func Lookup(roll string) (Data, bool) {
	d, ok := Dictionary[Roll(roll)]
	return d, ok
}

// HasPermission consults the permission graph for the given tuple.
// abilities empty always yields false per the core predicate's
// definition.
func HasPermission(ctx context.Context, q *storage.Queries, userID int32, roll string, abilities []storage.Ability, resource *int32) (bool, error) {
	if len(abilities) == 0 {
		return false, nil
	}

	strs := make([]string, len(abilities))
	for i, a := range abilities {
		strs[i] = string(a)
	}

	return q.HasPermission(ctx, userID, roll, strs, resource)
}

// Reason names why a single proposed permission tuple failed
// validation ahead of a write.
type Reason string

const (
	ReasonUnknownRoll           Reason = "unknown_roll"
	ReasonInvalidAbility        Reason = "invalid_ability"
	ReasonResourceNotAllowed    Reason = "resource_not_allowed"
	ReasonUnknownResourceTables Reason = "unknown_resource_tables"
	ReasonResourceIDNotFound    Reason = "resource_id_not_found"
)

// ValidationError reports every tuple in a batch that failed
// validation. Per spec, validation failures short-circuit the entire
// update — callers must not write any tuple from a batch that produced
// a ValidationError.
type ValidationError struct {
	Failures []TupleFailure
}

// TupleFailure names the batch index and reason a single tuple was
// rejected.
type TupleFailure struct {
	Index  int
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("permission: %d tuple(s) failed validation", len(e.Failures))
}

// Tuple is one proposed permission grant, as submitted by a caller
// before it is resolved to a storage.Permission row.
type Tuple struct {
	SubjectTable  storage.SubjectTable
	SubjectID     int32
	Roll          string
	Ability       storage.Ability
	ResourceTable *storage.SubjectTable
	ResourceID    *int32
}

// Validate checks every tuple against the roll dictionary and, for
// resource-scoped tuples, confirms the resource row actually exists.
// It returns a *ValidationError naming every failing tuple, or nil if
// the whole batch is clean.
func Validate(ctx context.Context, q *storage.Queries, tuples []Tuple) error {
	var failures []TupleFailure

	for i, t := range tuples {
		reason, ok := validateTuple(ctx, q, t)
		if !ok {
			failures = append(failures, TupleFailure{Index: i, Reason: reason})
		}
	}

	if len(failures) > 0 {
		return &ValidationError{Failures: failures}
	}

	return nil
}

func validateTuple(ctx context.Context, q *storage.Queries, t Tuple) (Reason, bool) {
	data, ok := Lookup(t.Roll)
	if !ok {
		return ReasonUnknownRoll, false
	}

	if !data.allows(t.Ability) {
		return ReasonInvalidAbility, false
	}

	if t.ResourceTable == nil {
		return "", true
	}

	if !data.AllowResource {
		return ReasonResourceNotAllowed, false
	}

	switch *t.ResourceTable {
	case storage.SubjectUsers, storage.SubjectGroups:
	default:
		return ReasonUnknownResourceTables, false
	}

	if t.ResourceID == nil {
		return ReasonResourceIDNotFound, false
	}

	found, err := resourceExists(ctx, q, *t.ResourceTable, *t.ResourceID)
	if err != nil || !found {
		return ReasonResourceIDNotFound, false
	}

	return "", true
}

func resourceExists(ctx context.Context, q *storage.Queries, table storage.SubjectTable, id int32) (bool, error) {
	switch table {
	case storage.SubjectUsers:
		u, err := q.GetUserByID(ctx, id)
		return u != nil, err
	case storage.SubjectGroups:
		g, err := q.GetGroupByID(ctx, id)
		return g != nil, err
	default:
		return false, nil
	}
}

// Replace performs the idempotent replace-write described by the core:
// upsert every validated tuple, collect the resulting ids, then delete
// any existing row for the subject not in that set. Callers must
// already have run Validate successfully; Replace does not re-validate.
func Replace(ctx context.Context, q *storage.Queries, subjectTable storage.SubjectTable, subjectID int32, tuples []Tuple) error {
	keep := make([]int32, 0, len(tuples))

	for _, t := range tuples {
		id, err := q.UpsertPermission(ctx, storage.Permission{
			SubjectTable:  subjectTable,
			SubjectID:     subjectID,
			Roll:          t.Roll,
			Ability:       t.Ability,
			ResourceTable: t.ResourceTable,
			ResourceID:    t.ResourceID,
		})
		if err != nil {
			return err
		}
		keep = append(keep, id)
	}

	return q.DeleteSubjectPermissionsExcept(ctx, subjectTable, subjectID, keep)
}
