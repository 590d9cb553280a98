package useragent

import (
	ua "github.com/mileusna/useragent"
)

// Device type labels reported by DefaultParser
const (
	DeviceBot     = "bot"
	DeviceTablet  = "tablet"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

// DefaultParser parses user agents with github.com/mileusna/useragent.
type DefaultParser struct{}

func NewDefaultParser() DefaultParser {
	return DefaultParser{}
}

// Parse returns an empty Agent when nothing in raw was recognized.
func (DefaultParser) Parse(raw string) (Agent, error) {
	parsed := ua.Parse(raw)
	browser := browserName(parsed)
	if browser == "" && parsed.OS == "" {
		return Agent{}, nil
	}

	var device string
	switch {
	case parsed.Bot:
		device = DeviceBot
	case parsed.Tablet:
		device = DeviceTablet
	case parsed.Mobile:
		device = DeviceMobile
	case parsed.Desktop:
		device = DeviceDesktop
	}

	return Agent{
		Device:   device,
		Browser:  browser,
		Platform: parsed.OS,
	}, nil
}

// browserName drops the name the library makes up on a miss: a copy of the
// raw input, or a bare token that carries no version.
func browserName(parsed ua.UserAgent) string {
	switch {
	case parsed.Name == parsed.String:
		return ""
	case knownNames[parsed.Name], parsed.Version != "", parsed.URL != "":
		return parsed.Name
	default:
		return ""
	}
}

var knownNames = map[string]bool{
	ua.Opera:               true,
	ua.OperaMini:           true,
	ua.OperaTouch:          true,
	ua.Chrome:              true,
	ua.HeadlessChrome:      true,
	ua.Firefox:             true,
	ua.InternetExplorer:    true,
	ua.Safari:              true,
	ua.Edge:                true,
	ua.Vivaldi:             true,
	ua.NetFront:            true,
	ua.SamsungBrowser:      true,
	ua.GoogleAdsBot:        true,
	ua.Googlebot:           true,
	ua.Twitterbot:          true,
	ua.FacebookExternalHit: true,
	ua.Applebot:            true,
	ua.Bingbot:             true,
	ua.YandexBot:           true,
	ua.YandexAdNet:         true,
	ua.FacebookApp:         true,
	ua.InstagramApp:        true,
	ua.TiktokApp:           true,
	"Bytespider":           true,
}

var _ Parser = DefaultParser{}
