// Package conversation defines the persistence model for agent
// conversations: the serialized record, the polymorphic Store contract, and
// the storage error taxonomy. Concrete backends live in the filestore,
// s3store, and pgstore subpackages.
package conversation
