// SPDX-License-Identifier: EPL-2.0

package player

// Track identifies something to play. The engine keeps the pointer it was
// given, so a Track must not be modified after it was selected.
type Track struct {
	// URI is a file path, a file:// URI or a path inside the Opener's
	// file system. Its extension picks the decoder.
	URI string

	Title    string
	Artist   string
	Metadata map[string]string
}

func (t *Track) String() string {
	switch {
	case t == nil:
		return "<none>"
	case t.Title != "" && t.Artist != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return t.URI
	}
}
