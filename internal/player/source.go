package player

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type mediaFormat int

const (
	formatUnknown mediaFormat = iota
	formatMP3
	formatFLAC
)

func formatForPath(path string) mediaFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return formatMP3
	case ".flac":
		return formatFLAC
	default:
		return formatUnknown
	}
}

func formatForContentType(ct string) mediaFormat {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch strings.TrimSpace(strings.ToLower(ct)) {
	case "audio/mpeg", "audio/mp3":
		return formatMP3
	case "audio/flac", "audio/x-flac":
		return formatFLAC
	default:
		return formatUnknown
	}
}

// memSource adapts a fetched body to the ReadSeekCloser the decoders
// want without holding a connection open for the whole track.
type memSource struct {
	*bytes.Reader
}

func (memSource) Close() error { return nil }

// openSource acquires the media behind source. Remote media is fetched
// fully into memory; local paths are opened directly.
func openSource(source string, client *http.Client) (io.ReadSeekCloser, mediaFormat, error) {
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		resp, err := client.Get(source)
		if err != nil {
			return nil, formatUnknown, fmt.Errorf("fetch media: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, formatUnknown, fmt.Errorf("fetch media: unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, formatUnknown, fmt.Errorf("fetch media: %w", err)
		}
		f := formatForPath(u.Path)
		if f == formatUnknown {
			f = formatForContentType(resp.Header.Get("Content-Type"))
		}
		return memSource{bytes.NewReader(data)}, f, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, formatUnknown, err
	}
	return f, formatForPath(source), nil
}
