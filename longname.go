package sftpmount

import (
	"fmt"
	"os"

	"github.com/vmforge/sftpmount/wire"
)

// formatLongname renders the `ls -l` style longname carried in READDIR
// SSH_FXP_NAME entries (spec.md 4.4). Owner and group are always numeric:
// this server never resolves uid/gid to names, unlike a general-purpose
// sftp server that shells out to the platform's passwd/group databases.
// The timestamp always carries month, day, time-with-seconds, and year
// ("MMM d hh:mm:ss yyyy"), matching the original's
// lastModified().toString("MMM d hh:mm:ss yyyy") rather than ls(1)'s
// six-month recency switch.
func formatLongname(fi os.FileInfo) string {
	mode := wire.FromGoFileMode(fi.Mode())
	uid, gid := hostOwner(fi)

	mtime := fi.ModTime()
	month := mtime.Format("Jan")
	day := mtime.Format("2")
	clock := mtime.Format("15:04:05")
	year := mtime.Format("2006")

	return fmt.Sprintf("%c%s %4s %-8d %-8d %8d %s %2s %s %s %s",
		wire.TypeLetter(mode), wire.PermString(mode), "1", uid, gid, fi.Size(), month, day, clock, year, fi.Name())
}
