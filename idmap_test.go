package sftpmount

import "testing"

func TestIDMapForward(t *testing.T) {
	m := IDMap{{HostID: 1000, RemoteID: DefaultID}, {HostID: 2000, RemoteID: 3000}}

	cases := []struct {
		name     string
		id       int
		fallback int
		want     int
	}{
		{"no id info returns fallback", NoIDInfo, 500, 500},
		{"match with DefaultID returns fallback", 1000, 500, 500},
		{"match returns mapped remote id", 2000, 500, 3000},
		{"no match returns id unchanged", 4000, 500, 4000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := m.Forward(c.id, c.fallback); got != c.want {
				t.Fatalf("Forward(%d, %d) = %d, want %d", c.id, c.fallback, got, c.want)
			}
		})
	}
}

func TestIDMapReverse(t *testing.T) {
	m := IDMap{{HostID: 1000, RemoteID: 2000}, {HostID: 1000, RemoteID: 9999}}

	if got := m.Reverse(2000, 42); got != 1000 {
		t.Fatalf("Reverse(2000) = %d, want 1000", got)
	}

	if got := m.Reverse(9999, 42); got != 1000 {
		t.Fatalf("Reverse(9999) = %d (first-match-wins still finds entry), want 1000", got)
	}

	if got := m.Reverse(7, 42); got != 42 {
		t.Fatalf("Reverse(miss) = %d, want fallback 42", got)
	}
}

func TestIDMapDuplicateKeysFirstMatchWins(t *testing.T) {
	m := IDMap{{HostID: 1000, RemoteID: 1}, {HostID: 1000, RemoteID: 2}}

	if got := m.Forward(1000, 0); got != 1 {
		t.Fatalf("Forward with duplicate HostID = %d, want first entry's RemoteID 1", got)
	}
}
