// Package kubeconfig is a read-only view of the kube configuration store.
//
// It parses kubeconfig files into records that keep credential material in
// the form it is written on disk: inline "*-data" fields stay base64 text and
// file references stay paths. Decoding and reading that material is left to
// callers, so they can decide on precedence and report failures per field.
//
// Files are located the way kubectl locates them: an explicit path if one is
// given, otherwise every entry of $KUBECONFIG, otherwise ~/.kube/config. When
// several files are loaded the first file to define a name wins, and the
// current context is taken from the first file that sets one.
//
// Relative file references are resolved against the directory of the
// kubeconfig file that declared them.
package kubeconfig
