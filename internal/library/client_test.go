package library

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchLibrary(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"t1","ownerId":"u1","title":"First","artist":"Ann",
			 "mediaUrl":"https://cdn.example.com/t1.mp3","duration":183.5,
			 "size":4400000,"contentType":"audio/mpeg","playCount":7,
			 "lastPlayedAt":1700000000,"createdAt":1690000000},
			{"id":"t2","ownerId":"u1","title":"Second","artist":"Bo",
			 "mediaUrl":"https://cdn.example.com/t2.flac","createdAt":1690000100}
		]`))
	}))
	defer srv.Close()

	tracks, err := NewClient(srv.URL).FetchLibrary(context.Background(), "sess")
	if err != nil {
		t.Fatalf("FetchLibrary: %v", err)
	}

	if gotPath != "/api/v1/tracks" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sess" {
		t.Errorf("auth = %q", gotAuth)
	}
	if len(tracks) != 2 {
		t.Fatalf("len = %d, want 2", len(tracks))
	}

	first := tracks[0]
	if first.ID != "t1" || first.Title != "First" || first.Artist != "Ann" {
		t.Errorf("first = %+v", first)
	}
	if want := time.Duration(183.5 * float64(time.Second)); first.Duration != want {
		t.Errorf("Duration = %v, want %v", first.Duration, want)
	}
	if first.PlayCount != 7 || first.Size != 4400000 {
		t.Errorf("PlayCount=%d Size=%d", first.PlayCount, first.Size)
	}
	if first.LastPlayedAt.Unix() != 1700000000 {
		t.Errorf("LastPlayedAt = %v", first.LastPlayedAt)
	}

	if !tracks[1].LastPlayedAt.IsZero() {
		t.Errorf("second LastPlayedAt = %v, want zero", tracks[1].LastPlayedAt)
	}
}

func TestFetchLibraryNoSessionOmitsAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tracks, err := NewClient(srv.URL).FetchLibrary(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchLibrary: %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("len = %d, want 0", len(tracks))
	}
}

func TestFetchLibraryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).FetchLibrary(context.Background(), "bad"); err == nil {
		t.Fatal("expected error on 401")
	}
}
