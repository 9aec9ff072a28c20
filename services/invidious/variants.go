package invidious

import (
	"sort"
	"strconv"
	"strings"
)

var audioContainers = map[string]bool{
	"m4a":  true,
	"mp3":  true,
	"opus": true,
	"weba": true,
	"aac":  true,
}

// ExtractVariants builds the playable quality list from a formatStreams
// payload. Entries without url or quality label and audio-only entries are
// dropped; one variant per label is kept (the last one seen). The result is
// sorted by ascending resolution.
func ExtractVariants(raw any) []StreamVariant {
	list, _ := raw.([]any)
	byLabel := make(map[string]int, len(list))
	out := make([]StreamVariant, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		u := httpsURL(str(m, "url"))
		label := str(m, "qualityLabel", "resolution", "quality")
		if u == "" || label == "" {
			continue
		}
		mime := strings.ToLower(str(m, "type"))
		container := strings.ToLower(str(m, "container"))
		if container == "" {
			container = containerFromMime(mime)
		}
		if audioContainers[container] || strings.HasPrefix(mime, "audio/") {
			continue
		}
		v := StreamVariant{
			Quality:    label,
			Container:  container,
			URL:        u,
			Resolution: Resolution(label),
		}
		if i, ok := byLabel[label]; ok {
			out[i] = v
			continue
		}
		byLabel[label] = len(out)
		out = append(out, v)
	}
	SortVariants(out)
	return out
}

// SortVariants orders variants by resolution, then label.
func SortVariants(v []StreamVariant) {
	sort.SliceStable(v, func(i, j int) bool {
		if v[i].Resolution != v[j].Resolution {
			return v[i].Resolution < v[j].Resolution
		}
		return v[i].Quality < v[j].Quality
	})
}

// BestVariant returns the highest-resolution variant.
func BestVariant(v []StreamVariant) (StreamVariant, bool) {
	if len(v) == 0 {
		return StreamVariant{}, false
	}
	best := v[0]
	for _, x := range v[1:] {
		if x.Resolution > best.Resolution || (x.Resolution == best.Resolution && x.Quality > best.Quality) {
			best = x
		}
	}
	return best, true
}

// Resolution is the first run of digits in a quality label ("720p60" is 720).
// Labels without digits rank as zero.
func Resolution(label string) int {
	start := strings.IndexAny(label, "0123456789")
	if start < 0 {
		return 0
	}
	end := start
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(label[start:end])
	if err != nil {
		return 0
	}
	return n
}

func containerFromMime(mime string) string {
	if mime == "" {
		return ""
	}
	mime, _, _ = strings.Cut(mime, ";")
	_, sub, ok := strings.Cut(strings.TrimSpace(mime), "/")
	if !ok {
		return ""
	}
	if sub == "webm" && strings.HasPrefix(mime, "audio/") {
		return "weba"
	}
	return sub
}
