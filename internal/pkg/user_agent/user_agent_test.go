package user_agent_test

import (
	"testing"

	"pagepulse/internal/pkg/user_agent"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name            string
		userAgent       string
		expectedBrowser string
		expectedOS      string
		expectedDevice  string
		expectedMobile  bool
		expectedTablet  bool
		expectedDesktop bool
	}{
		{
			name:            "Chrome on Windows",
			userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			expectedBrowser: "Chrome",
			expectedOS:      "Windows",
			expectedDevice:  "Desktop",
			expectedDesktop: true,
		},
		{
			name:            "Safari on iPhone",
			userAgent:       "Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
			expectedBrowser: "Safari",
			expectedOS:      "iOS",
			expectedDevice:  "Mobile",
			expectedMobile:  true,
		},
		{
			name:            "Chrome on Android",
			userAgent:       "Mozilla/5.0 (Linux; Android 11; SM-G998B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.120 Mobile Safari/537.36",
			expectedBrowser: "Chrome",
			expectedOS:      "Android",
			expectedDevice:  "Mobile",
			expectedMobile:  true,
		},
		{
			name:            "Safari on iPad",
			userAgent:       "Mozilla/5.0 (iPad; CPU OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
			expectedBrowser: "Safari",
			expectedOS:      "iOS",
			expectedDevice:  "Tablet",
			expectedTablet:  true,
		},
		{
			name:            "Edge wins over Chrome marker",
			userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			expectedBrowser: "Edge",
			expectedOS:      "Windows",
			expectedDevice:  "Desktop",
			expectedDesktop: true,
		},
		{
			name:            "Firefox on macOS",
			userAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15) Gecko/20100101 Firefox/121.0",
			expectedBrowser: "Firefox",
			expectedOS:      "macOS",
			expectedDevice:  "Desktop",
			expectedDesktop: true,
		},
		{
			name:            "Internet Explorer 11 via Trident",
			userAgent:       "Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko",
			expectedBrowser: "Internet Explorer",
			expectedOS:      "Windows",
			expectedDevice:  "Desktop",
			expectedDesktop: true,
		},
		{
			name:            "Classic Opera",
			userAgent:       "Opera/9.80 (Windows NT 6.0) Presto/2.12.388 Version/12.14",
			expectedBrowser: "Opera",
			expectedOS:      "Windows",
			expectedDevice:  "Desktop",
			expectedDesktop: true,
		},
		{
			name:            "Chrome OS",
			userAgent:       "Mozilla/5.0 (X11; CrOS x86_64 14541.0.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36",
			expectedBrowser: "Chrome",
			expectedOS:      "Chrome OS",
			expectedDevice:  "Desktop",
			expectedDesktop: true,
		},
		{
			name:            "Android tablet without mobile token",
			userAgent:       "Mozilla/5.0 (Linux; Android 12; Tablet) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36",
			expectedBrowser: "Chrome",
			expectedOS:      "Android",
			expectedDevice:  "Tablet",
			expectedTablet:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := user_agent.Classify(tc.userAgent)

			if result.Browser != tc.expectedBrowser {
				t.Errorf("Expected browser %s, got %s", tc.expectedBrowser, result.Browser)
			}
			if result.OS != tc.expectedOS {
				t.Errorf("Expected OS %s, got %s", tc.expectedOS, result.OS)
			}
			if result.Device != tc.expectedDevice {
				t.Errorf("Expected device %s, got %s", tc.expectedDevice, result.Device)
			}
			if result.Mobile != tc.expectedMobile {
				t.Errorf("Expected mobile %v, got %v", tc.expectedMobile, result.Mobile)
			}
			if result.Tablet != tc.expectedTablet {
				t.Errorf("Expected tablet %v, got %v", tc.expectedTablet, result.Tablet)
			}
			if result.Desktop != tc.expectedDesktop {
				t.Errorf("Expected desktop %v, got %v", tc.expectedDesktop, result.Desktop)
			}
		})
	}
}

func TestClassifyVersions(t *testing.T) {
	testCases := []struct {
		name              string
		userAgent         string
		expectedBrowserV  string
		expectedOSVersion string
	}{
		{
			name:              "iPhone OS underscores become dots",
			userAgent:         "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			expectedBrowserV:  "604.1",
			expectedOSVersion: "17.0",
		},
		{
			name:              "Windows NT maps to marketing name",
			userAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			expectedBrowserV:  "91.0.4472.124",
			expectedOSVersion: "10",
		},
		{
			name:              "Windows 8.1 from NT 6.3",
			userAgent:         "Mozilla/5.0 (Windows NT 6.3; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.0.0 Safari/537.36",
			expectedBrowserV:  "91.0.0.0",
			expectedOSVersion: "8.1",
		},
		{
			name:              "IE version from msie token",
			userAgent:         "Mozilla/4.0 (compatible; MSIE 8.0; Windows NT 6.1)",
			expectedBrowserV:  "8.0",
			expectedOSVersion: "7",
		},
		{
			name:              "Android version",
			userAgent:         "Mozilla/5.0 (Linux; Android 11; SM-G998B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.120 Mobile Safari/537.36",
			expectedBrowserV:  "91.0.4472.120",
			expectedOSVersion: "11",
		},
		{
			name:              "macOS version with underscores",
			userAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Gecko/20100101 Firefox/121.0",
			expectedBrowserV:  "121.0",
			expectedOSVersion: "10.15.7",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := user_agent.Classify(tc.userAgent)

			if result.BrowserVersion != tc.expectedBrowserV {
				t.Errorf("Expected browser version %s, got %s", tc.expectedBrowserV, result.BrowserVersion)
			}
			if result.OSVersion != tc.expectedOSVersion {
				t.Errorf("Expected OS version %s, got %s", tc.expectedOSVersion, result.OSVersion)
			}
		})
	}
}

func TestClassifyBots(t *testing.T) {
	testCases := []struct {
		name        string
		userAgent   string
		expectedBot bool
	}{
		{"Googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"curl", "curl/8.4.0", true},
		{"python requests", "python-requests/2.31.0", true},
		{"headless Chrome", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/119.0.0.0 Safari/537.36", true},
		{"regular Chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := user_agent.Classify(tc.userAgent)
			if result.Bot != tc.expectedBot {
				t.Errorf("Expected bot %v, got %v", tc.expectedBot, result.Bot)
			}
		})
	}
}

func TestClassifyEmptyUserAgent(t *testing.T) {
	result := user_agent.Classify("")

	if result.Browser != "Unknown" {
		t.Errorf("Expected Unknown browser, got %s", result.Browser)
	}
	if result.OS != "Unknown" {
		t.Errorf("Expected Unknown OS, got %s", result.OS)
	}
	if !result.Desktop {
		t.Error("Expected empty user agent to default to desktop")
	}
	if result.Bot {
		t.Error("Expected empty user agent not to be flagged as bot")
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	first := user_agent.Classify(ua)
	second := user_agent.Classify(ua)

	if first != second {
		t.Errorf("Expected identical results for repeated classification, got %+v and %+v", first, second)
	}
}
