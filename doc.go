// Redefine loaded code at runtime
//
// Package hotswap replaces the code behind an already-loaded unit while the
// process keeps running. It tries several redefinition techniques in order of
// decreasing power until one succeeds, and keeps one unit's failure from
// spoiling the rest of the batch. You probably shouldn't use this in anything
// you care about.
//
// Limitations:
//   - Redirecting a unit to replacement code only works on amd64 and arm64
//   - No rollback: a successful redefinition is permanent
//   - Nothing checks that old and new code mean the same thing
//   - Concurrent calls against the same unit race at the memory level
package hotswap
