// SPDX-License-Identifier: EPL-2.0

package player

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

// Opener turns a track URI into a byte stream.
type Opener interface {
	Open(uri string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(uri string) (io.ReadCloser, error)

func (f OpenerFunc) Open(uri string) (io.ReadCloser, error) { return f(uri) }

// FileOpener opens local paths and file:// URIs.
type FileOpener struct{}

func (FileOpener) Open(uri string) (io.ReadCloser, error) {
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, err
		}
		uri = u.Path
	}

	return os.Open(uri)
}

// FSOpener opens tracks from a file system, such as an embed.FS or
// fstest.MapFS. A leading slash in the URI is ignored.
type FSOpener struct {
	FS fs.FS
}

func (o FSOpener) Open(uri string) (io.ReadCloser, error) {
	return o.FS.Open(strings.TrimPrefix(uri, "/"))
}
