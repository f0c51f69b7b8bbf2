package domain

type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformTelegram Platform = "telegram"
	PlatformFacebook Platform = "facebook"
)

// ShortForm reports whether the platform needs character-limited threading.
func (p Platform) ShortForm() bool {
	return p == PlatformTwitter
}

func ParsePlatforms(names []string) []Platform {
	platforms := make([]Platform, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		platforms = append(platforms, Platform(n))
	}
	return platforms
}
