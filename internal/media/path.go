package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the type of a media asset.
type Kind string

const (
	Image Kind = "image"
	Video Kind = "video"
)

// Ext returns the file extension used when persisting an asset of kind k.
func (k Kind) Ext() string {
	if k == Video {
		return "mp4"
	}
	return "jpg"
}

// SanitizeName maps a chat name to a directory name by replacing every
// character outside [A-Za-z0-9_] with '_'.
func SanitizeName(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// FileName returns "{kind}_{row}_{item}.{ext}".
func FileName(kind Kind, row, item int) string {
	return fmt.Sprintf("%s_%d_%d.%s", kind, row, item, kind.Ext())
}

// Path returns the destination of one asset under root.
func Path(root, chat string, kind Kind, row, item int) string {
	return filepath.Join(root, SanitizeName(chat), FileName(kind, row, item))
}
