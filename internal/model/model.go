package model

// Package model contains domain models/data structures.
// Pure data types shared across layers (HTTP, service, storage); no
// persistence tags beyond JSON, no business logic.

// Message roles stored in the messages table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// VerificationVerified is the status written for a successful verification.
// Failure states may be added later; records are append-only either way.
const VerificationVerified = "verified"

// OCRNoTextSentinel is what the extraction model returns for images that
// carry no readable text. It is valid output, not an error, and is stored
// verbatim on the file record.
const OCRNoTextSentinel = "No text detected"
