package catalog

import (
	"errors"
	"strconv"
	"strings"
)

const (
	m3uHeader        = "#EXTM3U"
	streamInfoPrefix = "#EXT-X-STREAM-INF:"
)

// hlsEntry is one rendition advertised by an HLS master playlist.
type hlsEntry struct {
	URI       string
	Bandwidth int64
	Codecs    string
}

// parseMasterPlaylist extracts the stream entries of an HLS master playlist.
// A valid media playlist returns no entries and no error.
func parseMasterPlaylist(data string) ([]hlsEntry, error) {
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != m3uHeader {
		return nil, errors.New("not an m3u playlist")
	}

	var entries []hlsEntry
	var pending *hlsEntry
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, streamInfoPrefix):
			attrs := line[len(streamInfoPrefix):]
			pending = &hlsEntry{
				Bandwidth: parseBandwidth(attrs),
				Codecs:    parseQuotedAttr(attrs, "CODECS"),
			}
		case line == "" || strings.HasPrefix(line, "#"):
			// other tags and blanks are ignored
		default:
			if pending != nil {
				pending.URI = line
				entries = append(entries, *pending)
				pending = nil
			}
		}
	}

	return entries, nil
}

func parseBandwidth(attrs string) int64 {
	_, after, found := strings.Cut(attrs, "BANDWIDTH=")
	if !found {
		return 0
	}
	value, _, _ := strings.Cut(after, ",")
	bandwidth, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return bandwidth
}

func parseQuotedAttr(attrs, name string) string {
	_, after, found := strings.Cut(attrs, name+"=\"")
	if !found {
		return ""
	}
	value, _, found := strings.Cut(after, "\"")
	if !found {
		return ""
	}
	return value
}
