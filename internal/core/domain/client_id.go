package domain

import "strconv"

// ClientID is the identity of a client. The zero value is unassigned: the
// client has not been persisted yet.
type ClientID struct {
	value    int64
	assigned bool
}

// UnassignedID returns the identity of a client that was never persisted.
func UnassignedID() ClientID {
	return ClientID{}
}

// AssignedID returns the identity the store gave a persisted client.
func AssignedID(value int64) ClientID {
	return ClientID{value: value, assigned: true}
}

// Value returns the numeric id and whether it is assigned.
func (id ClientID) Value() (int64, bool) {
	return id.value, id.assigned
}

func (id ClientID) IsAssigned() bool {
	return id.assigned
}

func (id ClientID) String() string {
	if !id.assigned {
		return "unassigned"
	}
	return strconv.FormatInt(id.value, 10)
}
