package service

import "errors"

var (
	ErrIDRequired          = errors.New("id is required")
	ErrTitleRequired       = errors.New("title is required")
	ErrNotFound            = errors.New("record not found")
	ErrInvalidStatus       = errors.New("invalid task status")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInsufficientData    = errors.New("not enough readings for this asset")
	ErrUnknownSite         = errors.New("site is not configured")
	ErrSnapshotUnavailable = errors.New("object storage is not configured")
)
