// Package mirror defines the data model shared by the
// mirrormaker components: source and target repository
// descriptions, push mirror records, the host interfaces
// implemented by the platform clients, and the error
// taxonomy used to classify REST API failures.
//
// The SourceHost and TargetHost interfaces abstract the
// two hosting platforms. Implementations live in the
// gitlab and github sub-packages; the reconcile package
// depends only on the interfaces.
package mirror
