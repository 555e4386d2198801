// Package syncer applies a resolved operation plan to the destination
// workspace. Files are classified by byte equality before being copied;
// module directories are replaced wholesale, never merged.
package syncer
