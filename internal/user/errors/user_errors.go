package usererrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrEmailExists = apperror.New(
		apperror.CodeConflict,
		"a user with this email already exists",
		http.StatusConflict,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrUserLeadsTeam = apperror.New(
		apperror.CodeConflict,
		"user still leads one or more teams, reassign leadership first",
		http.StatusConflict,
	)
	ErrHasOpenApprovals = apperror.New(
		apperror.CodeConflict,
		"user still holds pending approvals",
		http.StatusConflict,
	)
	ErrDaysAlreadySet = apperror.New(
		apperror.CodeConflict,
		"initial days off have already been set for this user",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"not enough remaining days off",
		http.StatusConflict,
	)
	ErrUnknownLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
)
