package model

import "testing"

func TestAdhanSoundValid(t *testing.T) {
	for _, s := range AdhanSounds {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []AdhanSound{"", "loud", "adhan_unknown"} {
		if s.Valid() {
			t.Errorf("%s should not be valid", s)
		}
	}
}

func TestIsCustomTrack(t *testing.T) {
	for _, s := range []AdhanSound{SoundMadina, SoundMakkah, SoundNureyn, SoundMishary} {
		if !s.IsCustomTrack() {
			t.Errorf("%s should be a custom track", s)
		}
	}
	for _, s := range []AdhanSound{SoundNone, SoundSilent, SoundDefault, "bogus"} {
		if s.IsCustomTrack() {
			t.Errorf("%s should not be a custom track", s)
		}
	}
}

func TestDefaultAdhanSoundIsAudible(t *testing.T) {
	if !DefaultAdhanSound.IsCustomTrack() {
		t.Errorf("default sound %s must map to an audio asset", DefaultAdhanSound)
	}
}

func TestReminderOffsetValid(t *testing.T) {
	for _, o := range ReminderOffsets {
		if !o.Valid() {
			t.Errorf("%d should be valid", o)
		}
	}
	for _, o := range []ReminderOffset{-5, 7, 120} {
		if o.Valid() {
			t.Errorf("%d should not be valid", o)
		}
	}
}

func TestIsNotifiable(t *testing.T) {
	for _, p := range NotifiablePrayers {
		if !p.IsNotifiable() {
			t.Errorf("%s should be notifiable", p)
		}
	}
	for _, p := range []Prayer{Sunrise, Midnight, Imsak, "brunch"} {
		if p.IsNotifiable() {
			t.Errorf("%s should not be notifiable", p)
		}
	}
}
