package teamerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrTeamNotFound = apperror.New(
		apperror.CodeNotFound,
		"team not found",
		http.StatusNotFound,
	)
	ErrTeamExists = apperror.New(
		apperror.CodeConflict,
		"a team with this name already exists",
		http.StatusConflict,
	)
	ErrInvalidTeamID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid team id",
		http.StatusBadRequest,
	)
	ErrLeaderNotFound = apperror.New(
		apperror.CodeNotFound,
		"team leader not found",
		http.StatusNotFound,
	)
	ErrMemberNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrAlreadyMember = apperror.New(
		apperror.CodeConflict,
		"user is already a member of this team",
		http.StatusConflict,
	)
	ErrNotAMember = apperror.New(
		apperror.CodeNotFound,
		"user is not a member of this team",
		http.StatusNotFound,
	)
)
