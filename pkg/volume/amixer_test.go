package volume

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

const stereo = `Simple mixer control 'Master',0
  Capabilities: pvolume pswitch pswitch-joined
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 65536
  Mono:
  Front Left: Playback 41943 [64%] [on]
  Front Right: Playback 41943 [64%] [on]
`

const mono = `Simple mixer control 'Master',0
  Capabilities: pvolume pvolume-joined pswitch pswitch-joined
  Playback channels: Mono
  Limits: Playback 0 - 87
  Mono: Playback 42 [48%] [-34.50dB] [off]
`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		percent int
		unmuted bool
		wantErr bool
	}{
		{"stereo", stereo, 64, true, false},
		{"mono fallback", mono, 48, false, false},
		{"boosted", "  Front Right: Playback 90000 [137%] [on]\n", 100, true, false},
		{"no channel", "Simple mixer control 'Master',0\n", 0, false, true},
		{"garbage value", "  Front Right: Playback [loud] [on]\n", 0, false, true},
		{"no brackets", "  Front Right: Playback\n", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percent, unmuted, err := Parse(tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if percent != tt.percent || unmuted != tt.unmuted {
				t.Errorf("Parse() = %d, %v; want %d, %v", percent, unmuted, tt.percent, tt.unmuted)
			}
		})
	}
}

type call struct {
	name string
	args []string
}

func recordingRun(out string, err error, calls *[]call) CommandFunc {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{name, args})
		return []byte(out), err
	}
}

func TestAmixerVolume(t *testing.T) {
	var calls []call
	a := NewAmixer("", recordingRun(stereo, nil, &calls))

	percent, unmuted, err := a.Volume()
	if err != nil {
		t.Fatalf("Volume() error: %v", err)
	}
	if percent != 64 || !unmuted {
		t.Errorf("Volume() = %d, %v; want 64, true", percent, unmuted)
	}
	want := []call{{"amixer", []string{"get", "Master"}}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestAmixerVolumeCommandError(t *testing.T) {
	var calls []call
	boom := errors.New("exec: not found")
	a := NewAmixer("PCM", recordingRun("", boom, &calls))
	if _, _, err := a.Volume(); !errors.Is(err, boom) {
		t.Errorf("Volume() error = %v, want wrapped %v", err, boom)
	}
}

func TestAmixerSetVolume(t *testing.T) {
	tests := []struct {
		percent int
		arg     string
	}{
		{30, "30%"},
		{-5, "0%"},
		{250, "100%"},
	}
	for _, tt := range tests {
		var calls []call
		a := NewAmixer("PCM", recordingRun("", nil, &calls))
		if err := a.SetVolume(tt.percent); err != nil {
			t.Fatalf("SetVolume(%d) error: %v", tt.percent, err)
		}
		want := []call{{"amixer", []string{"set", "PCM", tt.arg}}}
		if !reflect.DeepEqual(calls, want) {
			t.Errorf("SetVolume(%d) calls = %v, want %v", tt.percent, calls, want)
		}
	}
}
