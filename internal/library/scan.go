package library

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/playback"
)

var scanContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
}

// ScanFolder builds a track list from the audio files under root, for
// offline use without the hosted backend. Files whose tags cannot be
// read still get an entry named after the file.
func ScanFolder(root string, log *logrus.Logger) ([]playback.Track, error) {
	var tracks []playback.Track
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		ct, ok := scanContentTypes[ext]
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		t := playback.Track{
			ID:          path,
			Title:       strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			MediaURL:    path,
			Size:        info.Size(),
			ContentType: ct,
			CreatedAt:   info.ModTime(),
		}

		if meta := readTags(path); meta != nil {
			if meta.Title() != "" {
				t.Title = meta.Title()
			}
			t.Artist = meta.Artist()
		} else if log != nil {
			log.WithField("path", path).Debug("no readable tags, using filename")
		}

		tracks = append(tracks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func readTags(path string) tag.Metadata {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	return meta
}
