package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/chime"
	"github.com/lmeunier/groove/internal/config"
	"github.com/lmeunier/groove/internal/library"
	"github.com/lmeunier/groove/internal/mpris"
	"github.com/lmeunier/groove/internal/playback"
	"github.com/lmeunier/groove/internal/player"
	"github.com/lmeunier/groove/internal/state"
	"github.com/lmeunier/groove/internal/telemetry"
)

const (
	retryInterval     = 5 * time.Minute
	pendingPlayMaxAge = 30 * 24 * time.Hour
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)

	if err := run(log); err != nil {
		log.WithError(err).Fatal("groove exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stateMgr, err := state.Open()
	if err != nil {
		log.WithError(err).Warn("state database unavailable, settings will not persist")
		stateMgr = nil
	} else {
		defer stateMgr.Close()
		if err := stateMgr.DeleteOldPendingPlays(pendingPlayMaxAge); err != nil {
			log.WithError(err).Warn("pruning stale play reports failed")
		}
	}

	tracks, err := loadLibrary(cfg, log)
	if err != nil {
		return err
	}
	log.WithField("tracks", len(tracks)).Info("library loaded")

	var fx playback.Chime
	if cfg.Transition.EffectEnabled() {
		fx = chime.New(log)
	}

	var reporter *telemetry.Reporter
	var rep playback.Reporter
	if cfg.API.URL != "" {
		reporter = telemetry.NewReporter(telemetry.NewClient(cfg.API.URL), cfg.API.Token, stateMgr, log)
		rep = reporter
	}

	eng := playback.New(playback.Options{
		Player:          player.New(),
		Chime:           fx,
		Reporter:        rep,
		TransitionDelay: cfg.Transition.Delay(),
		Logger:          log,
	})
	defer eng.Close()

	restoreSettings(eng, stateMgr, log)

	adapter := mpris.New(eng, log)
	defer adapter.Close()

	retryDone := make(chan struct{})
	if reporter != nil {
		go reporter.RetryEvery(retryInterval, retryDone)
	}

	eng.SetPlaylist(tracks)

	// Announce track changes as they happen.
	unsub := eng.Subscribe(watchTrackChanges())
	defer unsub()

	repl(eng)
	close(retryDone)

	if stateMgr != nil {
		s := eng.State()
		if err := stateMgr.SavePlayerSettings(state.PlayerSettings{
			Volume:     s.Volume,
			Shuffle:    s.Shuffle,
			RepeatMode: int(s.RepeatMode),
		}); err != nil {
			log.WithError(err).Warn("saving player settings failed")
		}
	}
	if reporter != nil {
		reporter.Wait()
	}
	return nil
}

func loadLibrary(cfg *config.Config, log *logrus.Logger) ([]playback.Track, error) {
	if cfg.API.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return library.NewClient(cfg.API.URL).FetchLibrary(ctx, cfg.API.Token)
	}
	if cfg.LibraryFolder != "" {
		return library.ScanFolder(cfg.LibraryFolder, log)
	}
	return nil, fmt.Errorf("no library configured: set api.url or library_folder")
}

func restoreSettings(eng playback.Engine, stateMgr *state.Manager, log *logrus.Logger) {
	if stateMgr == nil {
		return
	}
	s, err := stateMgr.GetPlayerSettings()
	if err != nil {
		log.WithError(err).Warn("restoring player settings failed")
		return
	}
	eng.SetVolume(s.Volume)
	if s.Shuffle {
		eng.ToggleShuffle()
	}
	if s.RepeatMode >= int(playback.RepeatOff) && s.RepeatMode <= int(playback.RepeatAll) {
		eng.SetRepeatMode(playback.RepeatMode(s.RepeatMode))
	}
}

// watchTrackChanges prints a line whenever the current track changes.
func watchTrackChanges() playback.Observer {
	var lastID string
	return func(s playback.State) {
		if s.Track == nil {
			lastID = ""
			return
		}
		if s.Track.ID == lastID {
			return
		}
		lastID = s.Track.ID
		if s.Track.Artist != "" {
			fmt.Printf("> %s - %s\n", s.Track.Title, s.Track.Artist)
		} else {
			fmt.Printf("> %s\n", s.Track.Title)
		}
	}
}

func repl(eng playback.Engine) {
	fmt.Println("groove - commands: list, play N, pause, resume, stop, next, prev, seek SECS, vol 0-100, shuffle, repeat, status, quit")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("groove> ")
		if !sc.Scan() {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "list", "ls":
			printPlaylist(eng.State())
		case "play":
			if len(args) == 1 {
				if i, err := strconv.Atoi(args[0]); err == nil {
					eng.PlayIndex(i)
					continue
				}
			}
			eng.Play()
		case "resume":
			eng.Play()
		case "pause":
			eng.Pause()
		case "stop":
			eng.Stop()
		case "next", "n":
			eng.Next()
		case "prev", "p":
			eng.Previous()
		case "seek":
			if len(args) == 1 {
				if secs, err := strconv.ParseFloat(args[0], 64); err == nil {
					eng.SeekTo(time.Duration(secs * float64(time.Second)))
				}
			}
		case "vol":
			if len(args) == 1 {
				if pct, err := strconv.ParseFloat(args[0], 64); err == nil {
					eng.SetVolume(pct / 100)
				}
			}
		case "shuffle":
			fmt.Printf("shuffle: %v\n", eng.ToggleShuffle())
		case "repeat":
			fmt.Printf("repeat: %s\n", eng.CycleRepeatMode())
		case "status", "st":
			printStatus(eng.State())
		case "quit", "q", "exit":
			return
		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}
	}
}

func printPlaylist(s playback.State) {
	if len(s.Playlist) == 0 {
		fmt.Println("playlist is empty")
		return
	}
	for i, t := range s.Playlist {
		marker := " "
		if i == s.Index {
			marker = "*"
		}
		line := fmt.Sprintf("%s %3d  %s", marker, i, t.Title)
		if t.Artist != "" {
			line += " - " + t.Artist
		}
		if t.Size > 0 {
			line += fmt.Sprintf("  (%s)", humanize.Bytes(uint64(t.Size)))
		}
		fmt.Println(line)
	}
}

func printStatus(s playback.State) {
	if s.Track == nil {
		fmt.Println("nothing loaded")
		return
	}
	mode := "paused"
	switch {
	case s.IsLoading:
		mode = "loading"
	case s.IsPlaying:
		mode = "playing"
	}
	fmt.Printf("%s: %s - %s  [%s / %s]  vol %.0f%%  shuffle=%v repeat=%s\n",
		mode, s.Track.Title, s.Track.Artist,
		s.Position.Round(time.Second), s.Duration.Round(time.Second),
		s.Volume*100, s.Shuffle, s.RepeatMode)
}
