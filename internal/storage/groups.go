package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetGroupByID returns the group with id, or nil if none exists.
func (q *Queries) GetGroupByID(ctx context.Context, id int32) (*Group, error) {
	row := q.db.QueryRow(ctx, `select id, name from groups where id = $1`, id)

	var g Group
	if err := row.Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: get group: %w", err)
	}

	return &g, nil
}

// ListGroups returns every group, ordered by id.
func (q *Queries) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := q.db.Query(ctx, `select id, name from groups order by id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list groups: %w", err)
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("storage: scan group: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate groups: %w", err)
	}

	return out, nil
}

// ListGroupMembers returns the ids of every user belonging to groupID.
func (q *Queries) ListGroupMembers(ctx context.Context, groupID int32) ([]int32, error) {
	rows, err := q.db.Query(ctx,
		`select users_id from group_users where group_id = $1 order by users_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list group members: %w", err)
	}
	defer rows.Close()

	var out []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: scan group member: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate group members: %w", err)
	}

	return out, nil
}

// ListUserGroups returns the ids of every group userID belongs to.
func (q *Queries) ListUserGroups(ctx context.Context, userID int32) ([]int32, error) {
	rows, err := q.db.Query(ctx,
		`select group_id from group_users where users_id = $1 order by group_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list user groups: %w", err)
	}
	defer rows.Close()

	var out []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: scan user group: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate user groups: %w", err)
	}

	return out, nil
}

// AddGroupMember inserts a membership row. No-op (not an error) if the
// pair already exists.
func (q *Queries) AddGroupMember(ctx context.Context, groupID, userID int32) error {
	_, err := q.db.Exec(ctx,
		`insert into group_users (group_id, users_id) values ($1, $2)
		 on conflict (group_id, users_id) do nothing`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("storage: add group member: %w", err)
	}
	return nil
}

// UnknownMemberError is returned by ReplaceGroupMembers when memberIDs
// names an id that is not a known user. Mirrors
// permission.ValidationError's reject-the-whole-batch behavior: no
// delete or insert runs when this is returned.
type UnknownMemberError struct {
	IDs []int32
}

func (e *UnknownMemberError) Error() string {
	return fmt.Sprintf("storage: %d member id(s) do not exist", len(e.IDs))
}

// ValidateMembers returns every id in memberIDs that does not name an
// existing user, or nil if all of them do.
func (q *Queries) ValidateMembers(ctx context.Context, memberIDs []int32) ([]int32, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	rows, err := q.db.Query(ctx, `select id from users where id = any($1)`, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("storage: validate members: %w", err)
	}
	defer rows.Close()

	found := make(map[int32]bool, len(memberIDs))
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: scan member id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate members: %w", err)
	}

	var unknown []int32
	for _, id := range memberIDs {
		if !found[id] {
			unknown = append(unknown, id)
		}
	}

	return unknown, nil
}

// ReplaceGroupMembers replaces groupID's full membership list with
// memberIDs: existing members not in the new set are removed, members
// already present are left untouched, and new members are inserted.
// Validates every id up front and rejects the whole list — no write at
// all — if any id does not name a known user.
func (q *Queries) ReplaceGroupMembers(ctx context.Context, groupID int32, memberIDs []int32) error {
	unknown, err := q.ValidateMembers(ctx, memberIDs)
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		return &UnknownMemberError{IDs: unknown}
	}

	// A nil slice binds as SQL NULL, for which the prune below matches no
	// row; an empty array makes it remove every member.
	if memberIDs == nil {
		memberIDs = []int32{}
	}

	if _, err := q.db.Exec(ctx,
		`delete from group_users where group_id = $1 and not (users_id = any($2))`,
		groupID, memberIDs,
	); err != nil {
		return fmt.Errorf("storage: prune group members: %w", err)
	}

	for _, id := range memberIDs {
		if err := q.AddGroupMember(ctx, groupID, id); err != nil {
			return err
		}
	}

	return nil
}
