package core

import "errors"

var (
	ErrMissingCredentials = errors.New("dropbox email and password are required to login")
	ErrFormTokenNotFound  = errors.New("could not find the form token")
	ErrLoginFailed        = errors.New("failed to login to your account")

	// ErrNoEntries means the listing page had no filename blocks, the
	// directory is either empty or the page changed shape.
	ErrNoEntries = errors.New("listing contained no entries")
	ErrNoToken   = errors.New("no download token known for file")

	ErrFetchFailed  = errors.New("failed to fetch file")
	ErrUploadFailed = errors.New("failed to upload file")

	ErrNotDirectory     = errors.New("not a directory")
	ErrLocalFileMissing = errors.New("local file does not exist")
)
