// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// PathAttribute is the reserved attribute of an object record that holds
// the hash of the encrypted relative path blob.
const PathAttribute = "path"

// Item is one named item of the attribute store together with its
// attributes.
type Item struct {
	Name       string
	Attributes map[string]string
	// Seq is the store-assigned insertion order of the item. An item
	// created earlier always has a smaller Seq.
	Seq int64
}

// LockRecord is an entry of the lock table guarding one object.
type LockRecord struct {
	// ID has the form <object_id>-lock-<random suffix>.
	ID         string    `json:"lock_id"`
	ObjectID   string    `json:"object_id"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	Seq        int64     `json:"-"`
}

// Expired reports whether the lock is older than timeout at now.
func (l LockRecord) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(l.AcquiredAt) > timeout
}

// ObjectVersionRecord is the metadata record of one object: the version
// chain as a {new_hash: predecessor_hash} map plus the reserved path
// attribute.
type ObjectVersionRecord struct {
	ObjectID string            `json:"object_id"`
	PathHash string            `json:"path,omitempty"`
	Versions map[string]string `json:"versions"`
}

// NewObjectVersionRecord splits raw attributes into the path attribute and
// the version chain.
func NewObjectVersionRecord(objectID string, attrs map[string]string) ObjectVersionRecord {
	record := ObjectVersionRecord{
		ObjectID: objectID,
		Versions: make(map[string]string, len(attrs)),
	}
	for name, value := range attrs {
		if name == PathAttribute {
			record.PathHash = value
			continue
		}
		record.Versions[name] = value
	}
	return record
}
