package sftpmount

// NoIDInfo marks an id value as unavailable to the caller; Forward treats
// it as "return the fallback", never as an id to map.
const NoIDInfo = -2

// DefaultID marks an IDPair's RemoteID as "advertise the caller's configured
// default id for this direction" rather than a literal remote id.
const DefaultID = -1

// IDPair is one entry of an ordered host-id/remote-id mapping list.
type IDPair struct {
	HostID   int
	RemoteID int
}

// IDMap is an ordered list of IDPairs, matched first-match-wins in either
// direction. Duplicate HostID or RemoteID entries are legal; the first
// matching entry in list order always wins.
type IDMap []IDPair

// Forward maps a host id to the id that should be advertised to the remote
// peer. id == NoIDInfo always returns fallback. A HostID match whose
// RemoteID is DefaultID also returns fallback (the configured default for
// this direction, supplied by the caller). No match returns id unchanged.
func (m IDMap) Forward(id, fallback int) int {
	if id == NoIDInfo {
		return fallback
	}

	for _, pair := range m {
		if pair.HostID == id {
			if pair.RemoteID == DefaultID {
				return fallback
			}
			return pair.RemoteID
		}
	}

	return id
}

// Reverse maps a remote id back to the host id that should own the file. A
// miss returns fallback; callers choose the fallback per §4.5/§4.7 (the
// parent directory's owner) vs §4.9 (the remote id itself).
func (m IDMap) Reverse(id, fallback int) int {
	for _, pair := range m {
		if pair.RemoteID == id {
			return pair.HostID
		}
	}

	return fallback
}
