package services

import (
	"github.com/fibertrack/deployform/internal/errors"
)

// Service errors
var (
	ErrSyncNotConfigured    = errors.Validation("sync source is not configured")
	ErrInvalidURL           = errors.Validation("Invalid URL")
	ErrUnsupportedLanguage  = errors.Validation("unsupported language")
	ErrBaseURLNotConfigured = errors.Validation("base_url not configured")
	ErrRemainingReadOnly    = errors.Validation("remaining is calculated and cannot be edited")
	ErrEntryNotFound        = errors.NotFound("entry not found")
)

// Messages shown to the user when a remote call goes wrong
const (
	MsgSyncUnreachable = "Sync Failed: ensure the script is deployed to 'Anyone'"
	MsgLibraryURL      = "Primary URL is a Library link, not a Web App URL. Data may not send."
	MsgPrimaryFailed   = "Failed to send to Primary Cloud"
	MsgSecondaryFailed = "Failed to send to Secondary Cloud"
	msgSyncErrorPrefix = "Sync Error: "
)
