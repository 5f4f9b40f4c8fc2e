package media

import (
	"errors"
	"reflect"
	"testing"

	"github.com/b/mediapanel/pkg/config"
)

func TestRefreshFiltersAndSorts(t *testing.T) {
	p := NewFakeProvider()
	p.AddName("org.freedesktop.DBus")
	p.Add("vlc", Playing, track("Song"))
	p.Add("chromium.instance42", Playing, track("Video"))
	p.Add("   ", Playing, track("Blank"))
	p.Add("ads", Playing, track("Sponsored ADVERT"))
	p.Add("mpv", Paused, track("Noise", "Various Artists"))
	p.Add("firefox.instance_1", Paused, track("Tab"))

	cfg := &config.Config{
		SourceBlacklist:  []string{"chromium*"},
		KeywordBlacklist: []string{"advert"},
		ArtistBlacklist:  []string{"Various*"},
	}
	r := NewRegistry(p, nil, discardLogger())

	got, present, err := r.Refresh(cfg, nil, "")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if want := []string{"firefox.instance_1", "vlc"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Refresh() ids = %v, want %v", ids(got), want)
	}
	if present {
		t.Error("empty previous id must not be reported present")
	}
	if s := got.Find("vlc"); s == nil || s.Status != Playing || s.Title() != "Song" {
		t.Errorf("vlc source = %+v", s)
	}
}

func TestRefreshKeepsExistingSources(t *testing.T) {
	p := NewFakeProvider()
	p.Add("vlc", Playing, track("Song"))
	r := NewRegistry(p, nil, discardLogger())
	cfg := &config.Config{}

	first, _, _ := r.Refresh(cfg, nil, "")
	first[0].LastActivity = epoch

	second, present, err := r.Refresh(cfg, first, "vlc")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if !present {
		t.Error("vlc should still be present")
	}
	if second[0] != first[0] {
		t.Error("existing source was recreated instead of kept")
	}
	if !second[0].LastActivity.Equal(epoch) {
		t.Error("kept source lost its activity timestamp")
	}
}

func TestRefreshRechecksKeywordEveryCycle(t *testing.T) {
	p := NewFakeProvider()
	session := p.Add("spotify", Playing, track("Song"))
	r := NewRegistry(p, nil, discardLogger())
	cfg := &config.Config{KeywordBlacklist: []string{"Advertisement"}}

	sources, _, _ := r.Refresh(cfg, nil, "")
	if len(sources) != 1 {
		t.Fatalf("expected spotify, got %v", ids(sources))
	}

	session.SetMetadata(track("Advertisement"))
	sources, present, _ := r.Refresh(cfg, sources, "spotify")
	if len(sources) != 0 || present {
		t.Errorf("blacklisted title still present: %v", ids(sources))
	}

	session.SetMetadata(track("Next song"))
	sources, _, _ = r.Refresh(cfg, sources, "")
	if len(sources) != 1 {
		t.Errorf("source should come back once the title is clean, got %v", ids(sources))
	}
}

func TestRefreshDropsVanishedSources(t *testing.T) {
	p := NewFakeProvider()
	p.Add("vlc", Playing, track("Song"))
	p.Add("mpv", Paused, track("Other"))
	r := NewRegistry(p, nil, discardLogger())
	cfg := &config.Config{}

	sources, _, _ := r.Refresh(cfg, nil, "")
	p.Remove("vlc")
	sources, present, _ := r.Refresh(cfg, sources, "vlc")
	if present {
		t.Error("vlc should no longer be present")
	}
	if !reflect.DeepEqual(ids(sources), []string{"mpv"}) {
		t.Errorf("ids = %v, want [mpv]", ids(sources))
	}
}

func TestRefreshListFailureKeepsPrevious(t *testing.T) {
	p := NewFakeProvider()
	p.Add("vlc", Playing, track("Song"))
	r := NewRegistry(p, nil, discardLogger())
	cfg := &config.Config{}
	sources, _, _ := r.Refresh(cfg, nil, "")

	p.FailList(errors.New("bus down"))
	got, present, err := r.Refresh(cfg, sources, "vlc")
	if err == nil {
		t.Fatal("expected list error")
	}
	if !present || len(got) != 1 {
		t.Errorf("previous set should be returned unchanged, got %v present=%v", ids(got), present)
	}
}

func TestRefreshRejectsUnreadableNewSession(t *testing.T) {
	p := NewFakeProvider()
	p.Add("broken", Playing, track("x")).Fail(errors.New("timeout"))
	r := NewRegistry(p, nil, discardLogger())

	sources, _, err := r.Refresh(&config.Config{}, nil, "")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("unreadable session should be rejected, got %v", ids(sources))
	}
}

type stubEnricher struct{ title string }

func (e stubEnricher) Enrich(id string, md Metadata, cfg *config.Config) {
	if id == "vlc" {
		md.SetTitle(e.title)
	}
}

func TestRefreshEnrichedTitleIsChecked(t *testing.T) {
	p := NewFakeProvider()
	p.Add("vlc", Playing, track("audio stream"))
	r := NewRegistry(p, stubEnricher{title: "Podcast Advert"}, discardLogger())

	sources, _, _ := r.Refresh(&config.Config{KeywordBlacklist: []string{"advert"}}, nil, "")
	if len(sources) != 0 {
		t.Errorf("enriched title should be blacklisted, got %v", ids(sources))
	}
}

// Blacklisted sources never appear, on any refresh.
func TestRefreshBlacklistInvariant(t *testing.T) {
	p := NewFakeProvider()
	p.Add("chromium.1", Playing, track("Video"))
	bad := p.Add("spotify", Playing, track("Song"))
	p.Add("mpv", Playing, track("Tune", "Bad Artist"))
	p.Add("vlc", Playing, track("Fine"))

	cfg := &config.Config{
		SourceBlacklist:  []string{"chromium.*"},
		KeywordBlacklist: []string{"SPONSOR"},
		ArtistBlacklist:  []string{"Bad *"},
	}
	r := NewRegistry(p, nil, discardLogger())

	var sources Sources
	titles := []string{"Song", "sponsored segment", "Song", "Sponsor"}
	for i, tt := range titles {
		bad.SetMetadata(track(tt))
		sources, _, _ = r.Refresh(cfg, sources, "")
		for _, s := range sources {
			if s.ID == "chromium.1" || s.ID == "mpv" {
				t.Errorf("cycle %d: blacklisted %s present", i, s.ID)
			}
			if s.ID == "spotify" && tt != "Song" {
				t.Errorf("cycle %d: keyword-blacklisted spotify present", i)
			}
		}
	}
}
