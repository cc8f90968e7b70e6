// Package tracehash selects the frames of a stack trace that identify a failure.
//
// # Overview
//
// Hashing a full stack trace is unstable for unbounded recursion: the number of
// repeated frames depends on where the stack happened to overflow. This package
// finds the repeating unit at the tail of such a trace and picks one canonical
// occurrence of it, so that traces differing only in recursion depth select the
// same frames.
//
// # Pipeline
//
//  1. SolveCover finds the best "suffix + repeated fragment" cover of the tail.
//  2. FindRepresentativeFragment picks the lexicographically smallest rotation
//     of the fragment among the trailing windows.
//  3. SelectKey combines both and falls back to the whole trace when the failure
//     is not a stack overflow or the fragment does not cover two full periods.
//
// EqualRange and CompareRange are the window primitives the search is built on.
//
// # Cost
//
// All functions are pure and allocation-free. SolveCover is O(S*F^2) for a trace
// of S frames and MaxFragmentLength F; callers bound latency through F.
//
// # Errors
//
// Invalid bounds or windows are programmer errors and wrap ErrInvalidArgument.
// Frames with unknown names are valid input.
package tracehash
