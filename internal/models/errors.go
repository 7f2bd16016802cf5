package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("authentication credentials were not provided")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrPasswordMismatch   = errors.New("the two password fields didn't match")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrUserInactive       = errors.New("user account is not active")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrLicenseInUse       = errors.New("license is referenced by tracks")
	ErrOwnTrack           = errors.New("you cannot like your own track")
	ErrAlreadyLiked       = errors.New("you have already liked this track")
	ErrNotLiked           = errors.New("you have not liked this track")
	ErrSelfFollow         = errors.New("you cannot follow yourself")
	ErrAlreadyFollowing   = errors.New("you are already following this user")
	ErrNotFollowing       = errors.New("you are not following this user")
	ErrFileNotFound       = errors.New("file not found")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrFileExtension      = errors.New("file extension is not allowed")
	ErrFileRequired       = errors.New("file is required")
	ErrInvalidReference   = errors.New("invalid reference")
)
