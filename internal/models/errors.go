package models

import "errors"

// Domain errors returned by repositories and services. Handlers map these to
// HTTP status codes with errors.Is, so wrapped errors keep working.
var (
	// ErrConflict signals a uniqueness violation (duplicate username, duplicate like).
	ErrConflict = errors.New("resource already exists")
	// ErrNotFound signals a missing user, post, or empty liker set.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials signals a password mismatch on login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated signals that no valid identity could be resolved for the request.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrForbidden signals a mutation attempted by someone other than the post's author.
	ErrForbidden = errors.New("not the author of this post")
	// ErrSelfLike signals an author trying to like their own post.
	ErrSelfLike = errors.New("cannot like your own post")
	// ErrInvalidToken signals a malformed, tampered, expired, or mis-signed token.
	ErrInvalidToken = errors.New("invalid token")
)
