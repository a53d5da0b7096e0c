package ncm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"cloudtune/internal/core"
	"cloudtune/internal/stream"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cookie string) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&core.APIConfig{
		BaseURL: server.URL + "/", // trailing slash must be tolerated
		Cookie:  cookie,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	return client, server
}

func TestCookieHeader(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Plain pairs",
			raw:      "MUSIC_U=abc; __csrf=def",
			expected: "MUSIC_U=abc; __csrf=def",
		},
		{
			name:     "Attributes dropped",
			raw:      "MUSIC_U=abc; Max-Age=1209600; Expires=Thu, 01 Jan 2026 00:00:00 GMT; Path=/; Domain=.music.example; __csrf=def",
			expected: "MUSIC_U=abc; __csrf=def",
		},
		{
			name:     "Empty values dropped",
			raw:      "MUSIC_U=; __csrf=def",
			expected: "__csrf=def",
		},
		{
			name:     "Empty string",
			raw:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CookieHeader(tt.raw); got != tt.expected {
				t.Errorf("CookieHeader() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClient_AppendsTimestampAndCookie(t *testing.T) {
	var gotTimestamp, gotCookie string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotTimestamp = r.URL.Query().Get("timestamp")
		gotCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte(`{"code":200,"songs":[]}`))
	}, "MUSIC_U=abc; Path=/")

	if _, err := client.SongDetail(context.Background(), "1001"); err != nil {
		t.Fatalf("SongDetail() unexpected error: %v", err)
	}

	if gotTimestamp == "" {
		t.Error("timestamp query parameter missing")
	}
	if gotCookie != "MUSIC_U=abc" {
		t.Errorf("Cookie header = %q, want %q", gotCookie, "MUSIC_U=abc")
	}
}

func TestClient_NonSuccessCodeIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":404}`))
	}, "")

	resp, err := client.SongDetail(context.Background(), "1001")
	if err != nil {
		t.Fatalf("SongDetail() error = %v, want the code surfaced without an error", err)
	}
	if resp.Code != 404 {
		t.Errorf("Code = %d, want 404 for the caller to inspect", resp.Code)
	}
}

func TestClient_SongURL(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     *stream.Candidate
		wantNone bool
	}{
		{
			name: "Full candidate",
			body: `{"code":200,"data":[{"id":1001,"url":"https://cdn.example/a.flac","br":1411000,"size":34567890,"md5":"abc","type":"FLAC","sr":44100,"time":326000}]}`,
			want: &stream.Candidate{
				URL: "https://cdn.example/a.flac", Type: "flac", Bitrate: 1411000,
				SampleRate: 44100, Size: 34567890, MD5: "abc", DurationMS: 326000,
			},
		},
		{
			name: "Trial clip flagged as preview",
			body: `{"code":200,"data":[{"id":1001,"url":"https://cdn.example/clip.mp3","br":128000,"type":"mp3","freeTrialInfo":{"start":45000,"end":75000}}]}`,
			want: &stream.Candidate{
				URL: "https://cdn.example/clip.mp3", Type: "mp3", Bitrate: 128000, Preview: true,
			},
		},
		{
			name:     "Non-200 means no candidate",
			body:     `{"code":-460}`,
			wantNone: true,
		},
		{
			name:     "Empty data means no candidate",
			body:     `{"code":200,"data":[]}`,
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLevel string
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotLevel = r.URL.Query().Get("level")
				_, _ = w.Write([]byte(tt.body))
			}, "")

			candidate, err := client.SongURL(context.Background(), "1001", stream.QualityLossless)
			if err != nil {
				t.Fatalf("SongURL() unexpected error: %v", err)
			}
			if gotLevel != "lossless" {
				t.Errorf("level param = %q, want %q", gotLevel, "lossless")
			}
			if tt.wantNone {
				if candidate != nil {
					t.Errorf("SongURL() = %+v, want nil candidate", candidate)
				}
				return
			}
			if candidate == nil {
				t.Fatal("SongURL() = nil, want candidate")
			}
			if *candidate != *tt.want {
				t.Errorf("SongURL() = %+v, want %+v", *candidate, *tt.want)
			}
		})
	}
}

func TestClient_MatchSong(t *testing.T) {
	var gotSource string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSource = r.URL.Query().Get("source")
		_, _ = w.Write([]byte(`{"code":200,"data":{"url":"https://mirror.example/a.flac","br":1411000,"size":40000000,"md5":"def","type":"flac","source":"kuwo"}}`))
	}, "")

	result, err := client.MatchSong(context.Background(), "1001", []string{"kuwo", "kugou"})
	if err != nil {
		t.Fatalf("MatchSong() unexpected error: %v", err)
	}
	if gotSource != "kuwo,kugou" {
		t.Errorf("source param = %q, want comma-joined list", gotSource)
	}
	want := stream.UnblockResult{
		URL: "https://mirror.example/a.flac", Type: "flac", Bitrate: 1411000,
		Size: 40000000, MD5: "def", Source: "kuwo",
	}
	if *result != want {
		t.Errorf("MatchSong() = %+v, want %+v", *result, want)
	}
}

func TestClient_MatchSong_NoURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"data":{"source":"migu"}}`))
	}, "")

	result, err := client.MatchSong(context.Background(), "1001", []string{"migu"})
	if err != nil {
		t.Fatalf("MatchSong() unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("MatchSong() = %+v, want nil when upstream has no URL", result)
	}
}

func TestClient_QRFlowEndpoints(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/qr/key":
			_, _ = w.Write([]byte(`{"code":200,"data":{"unikey":"k-1"}}`))
		case "/login/qr/create":
			_, _ = w.Write([]byte(`{"code":200,"data":{"qrurl":"https://music.example/login?codekey=k-1"}}`))
		case "/login/qr/check":
			_, _ = w.Write([]byte(`{"code":803,"cookie":"MUSIC_U=xyz"}`))
		default:
			http.NotFound(w, r)
		}
	}, "")

	ctx := context.Background()

	key, err := client.QRKey(ctx)
	if err != nil || key != "k-1" {
		t.Fatalf("QRKey() = %q, %v", key, err)
	}

	qrURL, err := client.QRCreate(ctx, key)
	if err != nil || qrURL == "" {
		t.Fatalf("QRCreate() = %q, %v", qrURL, err)
	}

	status, err := client.QRCheck(ctx, key)
	if err != nil {
		t.Fatalf("QRCheck() unexpected error: %v", err)
	}
	if status.Code != 803 || status.Cookie != "MUSIC_U=xyz" {
		t.Errorf("QRCheck() = %+v, want code 803 with cookie", status)
	}
}
