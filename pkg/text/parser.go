// Package text parses hand-typed input: Spotify track references and plain
// text song lists.
package text

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"hitstertrainer/internal/core"
)

const (
	// TrackIDLength is the length of a base-62 Spotify track ID
	TrackIDLength = 22

	trackURIPrefix = "spotify:track:"
)

var (
	ErrInvalidTrackID = errors.New("invalid Spotify track ID")
	ErrInvalidLine    = errors.New("expected 'Artist - Title'")

	trackIDRegex    = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// trailingYearRegex matches "(1974)", ", 1974" or a tab separated year at the end of a line
	trailingYearRegex = regexp.MustCompile(`\s*(?:\((\d{4})\)|[,;\t]\s*(\d{4}))\s*$`)

	spotifyDomains = map[string]bool{
		"open.spotify.com": true,
		"play.spotify.com": true,
		"spotify.com":      true,
	}

	// separators between artist and title, tried in order
	separators = []string{" - ", " – ", " — ", "\t"}
)

// ParseTrackID accepts a bare ID, a spotify:track: URI or an open.spotify.com
// track link (with or without locale prefix and share parameters) and returns
// the track ID.
func ParseTrackID(input string) (string, error) {
	input = strings.TrimSpace(input)

	var candidate string
	switch {
	case strings.HasPrefix(input, trackURIPrefix):
		candidate = strings.TrimPrefix(input, trackURIPrefix)
	case strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"):
		id, err := trackIDFromURL(input)
		if err != nil {
			return "", err
		}
		candidate = id
	default:
		candidate = input
	}

	if !trackIDRegex.MatchString(candidate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTrackID, input)
	}
	return candidate, nil
}

func trackIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(rawURL, ".,!?;"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTrackID, err)
	}

	if !spotifyDomains[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("%w: not a Spotify link", ErrInvalidTrackID)
	}

	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range pathParts {
		if part == "track" && i+1 < len(pathParts) {
			return pathParts[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: no track in link", ErrInvalidTrackID)
}

// ParseSongLine reads "Artist - Title" with an optional trailing year in
// parentheses or after a comma.
func ParseSongLine(line string) (core.Song, error) {
	line = normalize(line)

	var song core.Song
	if m := trailingYearRegex.FindStringSubmatchIndex(line); m != nil {
		var year string
		if m[2] >= 0 {
			year = line[m[2]:m[3]]
		} else {
			year = line[m[4]:m[5]]
		}
		song.Year, _ = strconv.Atoi(year)
		line = line[:m[0]]
	}

	for _, sep := range separators {
		artist, title, ok := strings.Cut(line, sep)
		if !ok {
			continue
		}
		song.Artist = strings.TrimSpace(artist)
		song.Title = strings.TrimSpace(title)
		if song.Artist != "" && song.Title != "" {
			return song, nil
		}
	}
	return core.Song{}, fmt.Errorf("%w: %q", ErrInvalidLine, line)
}

// ParseSongList reads one song per line. Blank lines and lines starting with
// '#' are skipped; the first malformed line stops parsing.
func ParseSongList(r io.Reader) ([]core.Song, error) {
	var songs []core.Song

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		song, err := ParseSongLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		songs = append(songs, song)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read song list: %w", err)
	}
	return songs, nil
}

func normalize(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	// keep tabs, they separate columns pasted from spreadsheets
	if strings.Contains(s, "\t") {
		return s
	}
	return whitespaceRegex.ReplaceAllString(s, " ")
}
