package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyPublished  = errors.New("page is already published")
	ErrPublishInProgress = errors.New("page is being published")
	ErrApprovalPending   = errors.New("page has an unpublished approval")
)
