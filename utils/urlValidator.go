package util

import (
	"net/url"
	"strings"

	"webdl/models"
)

type platformRule struct {
	reelPaths         []string
	videoPaths        []string
	defaultType       models.VideoType
	defaultConfidence models.Confidence
}

var hostToPlatform = map[string]string{
	"youtube.com":       "YouTube",
	"m.youtube.com":     "YouTube",
	"music.youtube.com": "YouTube",
	"youtu.be":          "YouTube",
	"vimeo.com":         "Vimeo",
	"player.vimeo.com":  "Vimeo",
	"facebook.com":      "Facebook",
	"m.facebook.com":    "Facebook",
	"fb.watch":          "Facebook",
	"dailymotion.com":   "Dailymotion",
	"dai.ly":            "Dailymotion",
	"instagram.com":     "Instagram",
	"twitter.com":       "Twitter",
	"x.com":             "Twitter",
	"tiktok.com":        "TikTok",
	"vm.tiktok.com":     "TikTok",
	"twitch.tv":         "Twitch",
	"clips.twitch.tv":   "Twitch",
	"reddit.com":        "Reddit",
	"v.redd.it":         "Reddit",
	"soundcloud.com":    "SoundCloud",
	"bandcamp.com":      "Bandcamp",
	"rumble.com":        "Rumble",
	"streamable.com":    "Streamable",
	"bilibili.com":      "Bilibili",
}

var platformRules = map[string]platformRule{
	"YouTube": {
		reelPaths:         []string{"/shorts"},
		videoPaths:        []string{"/watch", "/embed", "/live", "/playlist"},
		defaultType:       models.VideoTypeVideo,
		defaultConfidence: models.ConfidenceMedium,
	},
	"Instagram": {
		reelPaths:         []string{"/reel", "/reels"},
		videoPaths:        []string{"/tv", "/p"},
		defaultType:       models.VideoTypeReel,
		defaultConfidence: models.ConfidenceMedium,
	},
	"Facebook": {
		reelPaths:         []string{"/reel", "/reels"},
		videoPaths:        []string{"/watch", "/video", "/videos"},
		defaultType:       models.VideoTypeVideo,
		defaultConfidence: models.ConfidenceMedium,
	},
	"TikTok": {
		defaultType:       models.VideoTypeReel,
		defaultConfidence: models.ConfidenceHigh,
	},
	"Twitter": {
		reelPaths:         []string{"/status"},
		defaultType:       models.VideoTypeReel,
		defaultConfidence: models.ConfidenceHigh,
	},
	"Twitch": {
		reelPaths:         []string{"/clip", "/clips"},
		videoPaths:        []string{"/videos"},
		defaultType:       models.VideoTypeVideo,
		defaultConfidence: models.ConfidenceMedium,
	},
	"Vimeo": {
		defaultType:       models.VideoTypeVideo,
		defaultConfidence: models.ConfidenceHigh,
	},
}

// DetectPlatform is informational only; unknown hosts are still handed to yt-dlp.
func DetectPlatform(inputURL string) models.PlatformInfo {
	unknown := models.PlatformInfo{
		Platform:   "Unknown",
		VideoType:  models.VideoTypeVideo,
		Confidence: models.ConfidenceLow,
	}

	parsed, err := url.Parse(strings.TrimSpace(inputURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return unknown
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	platform, exists := hostToPlatform[host]
	if !exists && strings.HasSuffix(host, ".bandcamp.com") {
		platform, exists = "Bandcamp", true
	}
	if !exists {
		return unknown
	}

	rule, hasRule := platformRules[platform]
	if !hasRule {
		return models.PlatformInfo{
			Platform:   platform,
			VideoType:  models.VideoTypeVideo,
			Confidence: models.ConfidenceLow,
		}
	}

	path := strings.ToLower(parsed.Path)

	if pathContains(path, rule.reelPaths) {
		return models.PlatformInfo{Platform: platform, VideoType: models.VideoTypeReel, Confidence: models.ConfidenceHigh}
	}
	if pathContains(path, rule.videoPaths) {
		return models.PlatformInfo{Platform: platform, VideoType: models.VideoTypeVideo, Confidence: models.ConfidenceHigh}
	}

	return models.PlatformInfo{
		Platform:   platform,
		VideoType:  rule.defaultType,
		Confidence: rule.defaultConfidence,
	}
}

func pathContains(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
