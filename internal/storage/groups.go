package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spendwise/internal/core"

	"github.com/google/uuid"
)

// Group registry. Membership only ever grows: there is deliberately no
// remove/leave statement anywhere in this file.

// CreateGroup creates a group owned by owner, who becomes its sole initial
// member.
func (r *Repository) CreateGroup(ctx context.Context, owner, name string, budget float64) (core.Group, error) {
	g := core.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Budget:    budget,
		CreatedBy: owner,
		Members:   []string{owner},
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO budget_groups (id, name, budget, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		g.ID, g.Name, g.Budget, g.CreatedBy, g.CreatedAt,
	)
	if err != nil {
		return core.Group{}, fmt.Errorf("insert group: %w", err)
	}
	if err := r.AddMember(ctx, g.ID, owner); err != nil {
		return core.Group{}, err
	}
	return g, nil
}

// GetGroup fetches a group with its member set. Missing groups yield
// core.ErrNotFound; membership checks are the caller's job.
func (r *Repository) GetGroup(ctx context.Context, id string) (core.Group, error) {
	var g core.Group
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, budget, created_by, created_at FROM budget_groups WHERE id = ?",
		id,
	).Scan(&g.ID, &g.Name, &g.Budget, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Group{}, core.ErrNotFound
	}
	if err != nil {
		return core.Group{}, fmt.Errorf("get group: %w", err)
	}

	g.Members, err = r.groupMembers(ctx, id)
	if err != nil {
		return core.Group{}, err
	}
	return g, nil
}

// ListGroups returns every group member belongs to.
func (r *Repository) ListGroups(ctx context.Context, member string) ([]core.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.budget, g.created_by, g.created_at
		 FROM budget_groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.username = ?
		 ORDER BY g.created_at, g.id`,
		member)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []core.Group{}
	for rows.Next() {
		var g core.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Budget, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		groups[i].Members, err = r.groupMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// IsMember reports whether username belongs to the group.
func (r *Repository) IsMember(ctx context.Context, groupID, username string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = ? AND username = ?)",
		groupID, username,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// AddMember adds username to the group. Idempotent set-add.
func (r *Repository) AddMember(ctx context.Context, groupID, username string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, username, joined_at) VALUES (?, ?, ?)",
		groupID, username, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (r *Repository) groupMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT username FROM group_members WHERE group_id = ? ORDER BY joined_at, username",
		groupID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
