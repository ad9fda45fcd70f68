// Package ustr implements the small byte-string type easy-fs uses for
// on-disk directory entry names (app paths read out of user memory are
// plain strings from pgtbl.TranslatedStr instead). Unlike the
// teacher's ustr, which doubled as a hierarchical path type, this kernel
// has no directory-hierarchy traversal exposed to tasks (easy-fs is a
// standalone collaborator, not mounted into task file descriptors), so
// the path-joining helpers (Extend, IsAbsolute, Isdot/Isdotdot) have no
// caller and are dropped.
package ustr

/// Ustr is an immutable byte string, NUL-terminated when it originates
/// from user memory.
type Ustr []uint8

/// MkUstr creates an empty Ustr.
func MkUstr() Ustr {
	return Ustr{}
}

/// MkUstrSlice truncates buf at the first NUL byte, the way a C string
/// is bounded.
func MkUstrSlice(buf []uint8) Ustr {
	for i := 0; i < len(buf); i++ {
		if buf[i] == 0 {
			return buf[:i]
		}
	}
	return buf
}

/// Eq reports whether us and s contain identical bytes.
func (us Ustr) Eq(s Ustr) bool {
	if len(us) != len(s) {
		return false
	}
	for i, v := range us {
		if v != s[i] {
			return false
		}
	}
	return true
}

/// String converts the Ustr to a Go string.
func (us Ustr) String() string {
	return string(us)
}

// DirNameLen is the fixed width of a directory-entry name on disk (§4.7
// [ADD]: DirEntry{name[28], inode_id}).
const DirNameLen = 28

/// ToDirName packs us into a DirNameLen-byte array for a DirEntry,
/// truncating silently if it is too long and zero-padding otherwise.
func (us Ustr) ToDirName() [DirNameLen]byte {
	var out [DirNameLen]byte
	n := len(us)
	if n > DirNameLen {
		n = DirNameLen
	}
	copy(out[:], us[:n])
	return out
}

/// FromDirName unpacks a fixed-width on-disk name back into a Ustr,
/// trimming the zero padding.
func FromDirName(b [DirNameLen]byte) Ustr {
	return MkUstrSlice(b[:])
}
