// Package fs provides the filesystem abstraction behind blobstore.LocalStore.
//
//   - [FileSystem]: the operations an atomic whole-file write needs
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that injects write, sync, close or rename errors
//
// Tests inject [FaultyFS] to verify that failed writes leave neither a
// partial destination nor a stray temporary file:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("users.snap", fs.Fault{FailOnSync: true})
//
// Operations take no context.Context. Local syscalls are not interruptible;
// callers check their context before starting a write.
package fs
