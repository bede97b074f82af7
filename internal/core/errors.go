package core

import "errors"

var (
	// ErrMemberNotFound indicates the referenced member id is absent.
	ErrMemberNotFound = errors.New("member not found")
	// ErrFineNotFound indicates the fine index is out of range.
	ErrFineNotFound = errors.New("fine not found")
	// ErrCategoryNotFound indicates the referenced category key is absent.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrDuplicateMember indicates another member already has the same
	// name and surname.
	ErrDuplicateMember = errors.New("member already exists")
	// ErrDuplicateCategory indicates another category has the same name.
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrCategoryNotAssignable indicates a fine referenced a macro or
	// inactive category.
	ErrCategoryNotAssignable = errors.New("category not assignable")
	// ErrCategoryProtected indicates an attempt to deactivate the
	// built-in ICS category.
	ErrCategoryProtected = errors.New("category cannot be deactivated")
	// ErrInvalidAmount indicates an amount that failed to parse or was
	// not strictly positive.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrMissingField indicates an empty required field.
	ErrMissingField = errors.New("missing required field")
	// ErrNoBackup indicates a restore with no recovery snapshot stored.
	ErrNoBackup = errors.New("no backup available")
	// ErrBackupExpired indicates the recovery window has elapsed.
	ErrBackupExpired = errors.New("backup expired")
)
