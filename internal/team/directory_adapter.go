package team

import (
	"context"

	"go-workforce/internal/timeoff"
)

// Directory adapts the team repository to the org-structure contract
// the workflow engine consumes.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) DistinctLeadersOf(ctx context.Context, userID string) ([]timeoff.Approver, error) {
	return d.repo.DistinctLeadersOf(ctx, userID)
}

func (d *Directory) TeammateEmailsOf(ctx context.Context, userID string) ([]string, error) {
	return d.repo.TeammateEmailsOf(ctx, userID)
}
