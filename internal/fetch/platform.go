package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

// Known job boards.
const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformHH              Platform = "hh"
	PlatformUnknown         Platform = "unknown"
)

// platformRule describes how to recognize a job board and where its posting text lives.
type platformRule struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

// Order matters: the first rule whose host suffix matches wins.
var platformRules = []platformRule{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content: []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
			".job-post-container",
		},
		noise: []string{
			".application--wrapper",
			".voluntary-self-id",
			".voluntary-self-id-wrapper",
			"#usa_self_id_section",
			".post-apply",
		},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content: []string{
			".posting-page",
			".section-wrapper.page-full-width",
			".posting-description",
			".content",
		},
		noise: []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"myworkdayjobs.com", "workday.com"},
		content: []string{
			"[data-automation-id='jobDescription']",
			".job-description",
		},
		noise: []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"._descriptionText_oj0x8_198", "[class*='descriptionText']", "main"},
		noise:    []string{"[class*='applicationForm']"},
	},
	{
		platform: PlatformSmartRecruiters,
		hosts:    []string{"smartrecruiters.com"},
		content:  []string{".job-sections", "[itemprop='description']", "main"},
		noise:    []string{".job-apply", ".social-share-container"},
	},
	{
		platform: PlatformHH,
		hosts:    []string{"hh.ru", "hh.kz", "headhunter.ge"},
		content:  []string{"[data-qa='vacancy-description']", ".vacancy-description", ".vacancy-section"},
		noise:    []string{"[data-qa='vacancy-response-link-top']", ".vacancy-actions"},
	},
}

// commonNoise applies to every platform.
var commonNoise = []string{
	// Application forms
	"form",
	"#application-form",
	".application-form",
	".application--container",
	".apply-button-container",
	"[data-testid='application-form']",

	// EEO and legal
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	"[data-testid='eeo']",
	".legal-disclosure",
	".self-identification",

	// Social and share buttons
	".social-share",
	".share-buttons",
	".social-links",

	// Cookie and GDPR
	".cookie-banner",
	".cookie-consent",
	".gdpr-notice",
}

func lookupPlatform(p Platform) (platformRule, bool) {
	for _, rule := range platformRules {
		if rule.platform == p {
			return rule, true
		}
	}
	return platformRule{}, false
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, rule := range platformRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return rule.platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform, most specific first.
// Unknown platforms get the generic job posting selectors.
func PlatformContentSelectors(platform Platform) []string {
	rule, ok := lookupPlatform(platform)
	if !ok {
		return JobPostingSelectors()
	}
	return append(append([]string{}, rule.content...), JobPostingSelectors()...)
}

// PlatformNoiseSelectors returns the selectors removed before text extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string{}, commonNoise...)
	if rule, ok := lookupPlatform(platform); ok {
		noise = append(noise, rule.noise...)
	}
	return noise
}
