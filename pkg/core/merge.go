package core

// Merge reconciles a local collection with a freshly fetched remote one.
//
// Policy is last-write-wins on UpdatedAt:
//   - a remote note unknown locally is appended, marked synced;
//   - a remote note strictly newer than the local one replaces it in place,
//     marked synced;
//   - otherwise the local note is kept as is, Synced flag included.
//
// Equal timestamps favour local. Fields are never merged individually, so a
// concurrent edit on the losing side is dropped.
//
// Merge is pure: neither input is modified and the result shares no backing
// array with them.
func Merge(local, remote []Note) []Note {
	out := make([]Note, len(local), len(local)+len(remote))
	copy(out, local)

	pos := make(map[string]int, len(out))
	for i, n := range out {
		if _, dup := pos[n.ID]; !dup {
			pos[n.ID] = i
		}
	}

	for _, r := range remote {
		if r.ID == "" {
			continue
		}
		r.Synced = true

		i, ok := pos[r.ID]
		if !ok {
			pos[r.ID] = len(out)
			out = append(out, r)
			continue
		}
		if r.UpdatedAt.After(out[i].UpdatedAt) {
			out[i] = r
		}
	}
	return out
}
