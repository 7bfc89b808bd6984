package timeofferrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrInvalidRequestType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid request type, expected PAID, UNPAID or SICK",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start date must be before or equal to end date",
		http.StatusBadRequest,
	)
	ErrZeroDuration = apperror.New(
		apperror.CodeInvalidInput,
		"cannot create a request with a duration of 0 working days",
		http.StatusBadRequest,
	)
	ErrInsufficientDays = apperror.New(
		apperror.CodeConflict,
		"not enough remaining days off",
		http.StatusConflict,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodeConflict,
		"request overlaps an existing request",
		http.StatusConflict,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"time off request not found",
		http.StatusNotFound,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval not found",
		http.StatusNotFound,
	)
	ErrNotAwaitingApproval = apperror.New(
		apperror.CodeInvalidState,
		"request is not available for modification",
		http.StatusBadRequest,
	)
	ErrNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"only requests with status CREATED can be updated",
		http.StatusBadRequest,
	)
	ErrAlreadySubmitted = apperror.New(
		apperror.CodeInvalidState,
		"request has already been sent for approval",
		http.StatusBadRequest,
	)
	ErrNotCreator = apperror.New(
		apperror.CodeForbidden,
		"only the creator of the request can send it for approval",
		http.StatusForbidden,
	)
	ErrNoPendingRequests = apperror.New(
		apperror.CodeNotFound,
		"user has no pending requests",
		http.StatusNotFound,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid request id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
)
