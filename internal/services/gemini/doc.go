// Package gemini adapts the Google Gemini API to the classification and media
// ingestion backends.
//
// One Client serves both roles: Generate answers classification prompts with
// JSON output, and Upload/State/Transcribe/Release drive the Files API for
// long audio and video. The client performs no retries; fallback across
// models is the caller's job.
package gemini
