package user_agent

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

// DeviceInfo is the classification result for a single user agent.
type DeviceInfo struct {
	UserAgent      string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Device         string
	Mobile         bool
	Tablet         bool
	Desktop        bool
	Bot            bool
}

const unknown = "Unknown"

// Embed the rule database files
//
//go:embed database/bots.yml
//go:embed database/browsers.yml
//go:embed database/oss.yml
var databaseFiles embed.FS

// Browser entry structure
type BrowserEntry struct {
	Regex   string `yaml:"regex"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Exclude string `yaml:"exclude"`
}

// OS entry structure
type OSEntry struct {
	Regex    string            `yaml:"regex"`
	Name     string            `yaml:"name"`
	Version  string            `yaml:"version"`
	Versions map[string]string `yaml:"versions"`
}

// Compiled regex cache
type RegexCache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

func newRegexCache() *RegexCache {
	return &RegexCache{
		compiled: make(map[string]*pcre.Regexp),
	}
}

func (rc *RegexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mutex.RLock()
	if regex, exists := rc.compiled[pattern]; exists {
		rc.mutex.RUnlock()
		return regex, nil
	}
	rc.mutex.RUnlock()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	// Double-check pattern
	if regex, exists := rc.compiled[pattern]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile(pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = regex
	return regex, nil
}

// Global parser instance
var (
	parser *classifierParser
	once   sync.Once
)

type classifierParser struct {
	browsers    []BrowserEntry
	oss         []OSEntry
	botKeywords []string
	regexCache  *RegexCache
}

func getParser() *classifierParser {
	once.Do(func() {
		parser = &classifierParser{
			regexCache: newRegexCache(),
		}

		// Load browsers
		if data, err := databaseFiles.ReadFile("database/browsers.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.browsers); err != nil {
				fmt.Printf("Error parsing browsers.yml: %v\n", err)
			}
		}

		// Load OS
		if data, err := databaseFiles.ReadFile("database/oss.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.oss); err != nil {
				fmt.Printf("Error parsing oss.yml: %v\n", err)
			}
		}

		// Load bot keywords
		if data, err := databaseFiles.ReadFile("database/bots.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.botKeywords); err != nil {
				fmt.Printf("Error parsing bots.yml: %v\n", err)
			}
		}
	})
	return parser
}

// parseBot checks the keyword list against the lowercased user agent.
// Runs independently of browser/OS detection: a bot can still report a
// real browser string.
func (p *classifierParser) parseBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, keyword := range p.botKeywords {
		if strings.Contains(ua, keyword) {
			return true
		}
	}
	return false
}

func (p *classifierParser) parseBrowser(userAgent string) (string, string) {
	for _, entry := range p.browsers {
		if entry.Exclude != "" {
			if excludeRegex, err := p.regexCache.get(entry.Exclude); err == nil {
				if excludeRegex.MatchString(userAgent) {
					continue
				}
			}
		}
		if regex, err := p.regexCache.get(entry.Regex); err == nil {
			if matches := regex.FindStringSubmatch(userAgent); len(matches) > 0 {
				version := ""
				if entry.Version != "" && len(matches) > 1 {
					// Replace $1, $2, etc. with actual match groups
					version = entry.Version
					for i, match := range matches[1:] {
						placeholder := fmt.Sprintf("$%d", i+1)
						version = strings.ReplaceAll(version, placeholder, match)
					}
				}
				return entry.Name, version
			}
		}
	}
	return unknown, ""
}

func (p *classifierParser) parseOS(userAgent string) (string, string) {
	for _, entry := range p.oss {
		if regex, err := p.regexCache.get(entry.Regex); err == nil {
			if matches := regex.FindStringSubmatch(userAgent); len(matches) > 0 {
				version := ""
				if entry.Version != "" && len(matches) > 1 {
					// Replace $1, $2, etc. with actual match groups
					version = entry.Version
					for i, match := range matches[1:] {
						placeholder := fmt.Sprintf("$%d", i+1)
						version = strings.ReplaceAll(version, placeholder, match)
					}
				}
				// Apple agents encode versions with underscores
				version = strings.ReplaceAll(version, "_", ".")
				// Map raw tokens to marketing names (Windows NT table)
				if mapped, ok := entry.Versions[version]; ok {
					version = mapped
				}
				return entry.Name, version
			}
		}
	}
	return unknown, ""
}

// parseDevice classifies the device type from user agent patterns.
// The tablet check runs before the mobile check: iPad agents would
// otherwise never be seen, and "tablet" agents often also say "mobile".
func (p *classifierParser) parseDevice(userAgent string) (string, bool, bool, bool) {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "ipad") ||
		(strings.Contains(ua, "tablet") && !strings.Contains(ua, "mobile")) {
		return "Tablet", false, true, false
	}

	if strings.Contains(ua, "mobile") ||
		strings.Contains(ua, "iphone") || strings.Contains(ua, "ipod") {
		return "Mobile", true, false, false
	}

	return "Desktop", false, false, true
}

// Classify parses a raw user agent string into a DeviceInfo. An empty
// user agent yields a fully Unknown result classified as desktop:
// traffic with no UA string is extremely rare and treated as
// non-mobile, non-bot.
func Classify(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			Browser: unknown,
			OS:      unknown,
			Device:  "Desktop",
			Desktop: true,
		}
	}

	parser := getParser()

	browser, browserVersion := parser.parseBrowser(userAgent)
	os, osVersion := parser.parseOS(userAgent)
	device, mobile, tablet, desktop := parser.parseDevice(userAgent)

	return DeviceInfo{
		UserAgent:      userAgent,
		Browser:        browser,
		BrowserVersion: browserVersion,
		OS:             os,
		OSVersion:      osVersion,
		Device:         device,
		Mobile:         mobile,
		Tablet:         tablet,
		Desktop:        desktop,
		Bot:            parser.parseBot(userAgent),
	}
}
