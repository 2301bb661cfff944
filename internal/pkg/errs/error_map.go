/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError template, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template corresponding to every application
// error code. Entries without an explicit Status default to 400 Bad Request.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters"},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format"},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body"},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data"},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Gallery and Document Business Logic Errors
	ErrMissingIdentifier:   {Code: ErrMissingIdentifier, Message: "Missing NFT identifier"},
	ErrMissingName:         {Code: ErrMissingName, Message: "Missing NFT name"},
	ErrGalleryItemNotFound: {Code: ErrGalleryItemNotFound, Message: "NFT not found in gallery", Status: http.StatusNotFound},

	// 3xxx: Authorization Errors
	ErrAccessDenied:  {Code: ErrAccessDenied, Message: "Access denied", Status: http.StatusForbidden},
	ErrUnauthorized:  {Code: ErrUnauthorized, Message: "Unauthorized", Status: http.StatusForbidden},
	ErrDevKeyMissing: {Code: ErrDevKeyMissing, Message: "Server DEV_KEY missing", Status: http.StatusInternalServerError},

	// 5xxx: Internal System Errors
	ErrUnknown:       {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageFailed: {Code: ErrStorageFailed, Message: "Failed to save data", Status: http.StatusInternalServerError},
}
