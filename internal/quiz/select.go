package quiz

import (
	"math/rand/v2"

	"hitstertrainer/internal/core"
)

// MaxWrongAnswers is the number of distractors offered next to the correct answer.
const MaxWrongAnswers = 3

// maxDraws bounds the random draws spent looking for distinct distractors.
const maxDraws = 100

// RecentSet reports tracks handed out by earlier rounds.
type RecentSet interface {
	Has(trackID string) bool
}

// SelectSongs picks up to count distinct playable songs in random order.
// Songs in recent are used only when there are not enough others. A nil
// recent set disables the preference.
func SelectSongs(songs []core.Song, count int, recent RecentSet, rng *rand.Rand) []core.Song {
	seen := make(map[string]struct{}, len(songs))
	playable := make([]core.Song, 0, len(songs))
	for _, song := range songs {
		if !song.HasTrackID() {
			continue
		}
		if _, dup := seen[song.TrackID]; dup {
			continue
		}
		seen[song.TrackID] = struct{}{}
		playable = append(playable, song)
	}

	rng.Shuffle(len(playable), func(i, j int) {
		playable[i], playable[j] = playable[j], playable[i]
	})

	if count <= 0 || len(playable) == 0 {
		return nil
	}
	if recent == nil {
		return playable[:min(count, len(playable))]
	}

	fresh := make([]core.Song, 0, len(playable))
	var stale []core.Song
	for _, song := range playable {
		if recent.Has(song.TrackID) {
			stale = append(stale, song)
		} else {
			fresh = append(fresh, song)
		}
	}

	selected := fresh[:min(count, len(fresh))]
	if missing := count - len(selected); missing > 0 {
		selected = append(selected, stale[:min(missing, len(stale))]...)
	}
	return selected
}
