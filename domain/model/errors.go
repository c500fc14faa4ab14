package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedOrigin   = errors.New("unrecognized oauth origin")
	ErrMissingCode          = errors.New("missing authorization code")
	ErrMissingState         = errors.New("missing state parameter")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrInvalidIdentityToken = errors.New("invalid identity token")
	ErrMalformedWebhookBody = errors.New("malformed webhook body")
	ErrMissingPublishID     = errors.New("missing publish_id")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrInvalidTransition    = errors.New("invalid schedule status transition")
	ErrConcurrentUpdate     = errors.New("schedule changed concurrently")
	ErrConnectionNotFound   = errors.New("tiktok connection not found")
)

// UpstreamAuthError is returned when TikTok rejects a token request.
type UpstreamAuthError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *UpstreamAuthError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = e.Code
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return "tiktok auth error: " + msg
}

// Message is the provider text suitable for showing to the end user.
func (e *UpstreamAuthError) Message() string {
	if e.Description != "" {
		return e.Description
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// UpstreamProtocolError is returned when TikTok answers with something that is not JSON.
type UpstreamProtocolError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamProtocolError) Error() string {
	return fmt.Sprintf("invalid tiktok response (status %d)", e.StatusCode)
}

// ProfileFetchError wraps any failure of the user-info call.
type ProfileFetchError struct {
	Err error
}

func (e *ProfileFetchError) Error() string {
	return "tiktok user info: " + e.Err.Error()
}

func (e *ProfileFetchError) Unwrap() error { return e.Err }

// ProviderCallbackError carries the error TikTok put on the callback URL.
type ProviderCallbackError struct {
	Reason      string
	Description string
}

func (e *ProviderCallbackError) Error() string {
	if e.Description != "" {
		return "tiktok authorization denied: " + e.Reason + ": " + e.Description
	}
	return "tiktok authorization denied: " + e.Reason
}
