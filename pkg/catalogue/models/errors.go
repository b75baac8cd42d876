package models

import "errors"

// Sentinel not-found/duplicate errors, checked with errors.Is. Layers that
// need retry-kind dispatch wrap these with xerrors.New(xerrors.KindNotFound, ...).
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")

	ErrGroupNotFound  = errors.New("group not found")
	ErrDuplicateGroup = errors.New("group already exists")

	ErrMembershipNotFound = errors.New("membership not found")

	ErrFolderNotFound  = errors.New("folder not found")
	ErrDuplicateFolder = errors.New("folder already exists")

	ErrPermissionNotFound  = errors.New("folder group permission not found")
	ErrDuplicatePermission = errors.New("folder group permission already exists")

	ErrRequestNotFound      = errors.New("permission request not found")
	ErrRequestConflict      = errors.New("a pending or approved request already covers this triple")
	ErrRequestInvalidState  = errors.New("permission request is not in a valid state for this transition")
	ErrNoMatchingPermission = errors.New("no folder group permission matches the requested folder and mode")

	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskNotCancelable = errors.New("task is not in a cancelable state")

	ErrNotificationNotFound = errors.New("admin notification not found")

	ErrForbidden = errors.New("actor may not validate this request")
)
