// Package mediaingest turns a long audio or video asset into a transcript.
//
// The asset moves through Uploading, Processing and then one of the terminal
// states Active or Failed. The Ingestor uploads the bytes, polls the backend on
// a fixed interval until a terminal state is observed, and on Active asks the
// backend for a full transcript. A Failed asset ends the call with
// ErrMediaFailed and is never transcribed. There is no re-upload and no
// alternate backend; cancelling the context abandons the poll loop.
package mediaingest
