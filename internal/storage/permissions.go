package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// HasPermission evaluates the core authorization predicate directly in
// SQL: userID may act via a direct users-subject row or via any group
// they belong to, and (when resource is non-nil) the grant's resource
// must likewise resolve to resource either directly or via group
// membership. Mirrors the CTE shape used throughout the original
// permission queries.
func (q *Queries) HasPermission(ctx context.Context, userID int32, roll string, abilities []string, resource *int32) (bool, error) {
	if len(abilities) == 0 {
		return false, nil
	}

	var exists bool

	if resource != nil {
		err := q.db.QueryRow(ctx,
			`with subject_groups as (
				select groups.id from groups
				join group_users on groups.id = group_users.group_id
				where group_users.users_id = $1
			), resource_groups as (
				select groups.id from groups
				join group_users on groups.id = group_users.group_id
				where group_users.users_id = $4
			)
			select exists (
				select 1 from permissions
				where roll = $2
				  and ability = any($3)
				  and (
					(subject_table = 'groups' and subject_id in (select id from subject_groups)) or
					(subject_table = 'users' and subject_id = $1)
				  )
				  and (
					(resource_table = 'groups' and resource_id in (select id from resource_groups)) or
					(resource_table = 'users' and resource_id = $4)
				  )
			)`,
			userID, roll, abilities, *resource,
		).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("storage: has permission: %w", err)
		}
		return exists, nil
	}

	err := q.db.QueryRow(ctx,
		`with subject_groups as (
			select groups.id from groups
			join group_users on groups.id = group_users.group_id
			where group_users.users_id = $1
		)
		select exists (
			select 1 from permissions
			where roll = $2
			  and ability = any($3)
			  and (
				(subject_table = 'groups' and subject_id in (select id from subject_groups)) or
				(subject_table = 'users' and subject_id = $1)
			  )
		)`,
		userID, roll, abilities,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("storage: has permission: %w", err)
	}

	return exists, nil
}

// ListSubjectPermissions returns every permission row where subject is
// the given (table, id) pair.
func (q *Queries) ListSubjectPermissions(ctx context.Context, subjectTable SubjectTable, subjectID int32) ([]Permission, error) {
	rows, err := q.db.Query(ctx,
		`select id, subject_table, subject_id, roll, ability, resource_table, resource_id
		 from permissions where subject_table = $1 and subject_id = $2`,
		subjectTable, subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list subject permissions: %w", err)
	}
	defer rows.Close()

	return scanPermissions(rows)
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	var out []Permission
	for rows.Next() {
		var p Permission
		var resourceTable *string
		if err := rows.Scan(&p.ID, &p.SubjectTable, &p.SubjectID, &p.Roll, &p.Ability, &resourceTable, &p.ResourceID); err != nil {
			return nil, fmt.Errorf("storage: scan permission: %w", err)
		}
		if resourceTable != nil {
			t := SubjectTable(*resourceTable)
			p.ResourceTable = &t
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate permissions: %w", err)
	}

	return out, nil
}

// UpsertPermission inserts or, on conflict with the composite unique
// constraint, no-ops and returns the existing row's id. Used by the
// replace-write path.
func (q *Queries) UpsertPermission(ctx context.Context, p Permission) (int32, error) {
	var resourceTable *string
	if p.ResourceTable != nil {
		s := string(*p.ResourceTable)
		resourceTable = &s
	}

	var id int32
	err := q.db.QueryRow(ctx,
		`insert into permissions (subject_table, subject_id, roll, ability, resource_table, resource_id)
		 values ($1, $2, $3, $4, $5, $6)
		 on conflict (subject_table, subject_id, roll, ability, resource_table, resource_id)
		 do update set roll = excluded.roll
		 returning id`,
		p.SubjectTable, p.SubjectID, p.Roll, p.Ability, resourceTable, p.ResourceID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: upsert permission: %w", err)
	}

	return id, nil
}

// DeleteSubjectPermissionsExcept deletes every permission row for the
// given subject whose id is not in keep. Paired with UpsertPermission
// this implements the idempotent replace semantics.
func (q *Queries) DeleteSubjectPermissionsExcept(ctx context.Context, subjectTable SubjectTable, subjectID int32, keep []int32) error {
	_, err := q.db.Exec(ctx,
		`delete from permissions
		 where subject_table = $1 and subject_id = $2 and not (id = any($3))`,
		subjectTable, subjectID, keep,
	)
	if err != nil {
		return fmt.Errorf("storage: delete stale permissions: %w", err)
	}
	return nil
}

// DeleteResourcePermissions removes every permission row whose resource
// is the given (table, id) pair. Called atomically with deleting the
// underlying user/group.
func (q *Queries) DeleteResourcePermissions(ctx context.Context, resourceTable SubjectTable, resourceID int32) error {
	_, err := q.db.Exec(ctx,
		`delete from permissions where resource_table = $1 and resource_id = $2`,
		resourceTable, resourceID,
	)
	if err != nil {
		return fmt.Errorf("storage: delete resource permissions: %w", err)
	}
	return nil
}
