// Package aggregator runs the update cycle that elects the current
// playback session, formats its title and reports display state.
package aggregator

// Observer receives the display state produced by each update cycle.
type Observer interface {
	SetVisible(visible bool)
	SetCanGoNext(can bool)
	SetCanGoPrevious(can bool)
	SetTitle(title string)
	SetVolume(percent int, unmuted bool)
	SetPlaying(playing bool)
}

// VolumeReader reads the master volume.
type VolumeReader interface {
	Volume() (percent int, unmuted bool, err error)
}

// Refresher pokes the status bar after the displayed state was updated.
type Refresher interface {
	Refresh()
}

type nopObserver struct{}

func (nopObserver) SetVisible(bool) {}
func (nopObserver) SetCanGoNext(bool) {}
func (nopObserver) SetCanGoPrevious(bool) {}
func (nopObserver) SetTitle(string) {}
func (nopObserver) SetVolume(int, bool) {}
func (nopObserver) SetPlaying(bool) {}
